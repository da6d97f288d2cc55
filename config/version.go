package config

import "fmt"

// 通过 -ldflags "-X" 在构建时注入
var (
	Version    string = "dev"
	CommitHash string = ""
	BuildTime  string = ""
)

// IsProduction 判断是否为生产环境
// 生产环境：Version 为 "release" 且 CommitHash 不为空
func IsProduction() bool {
	return Version == "release" && CommitHash != ""
}

// IsDevelopment 判断是否为开发环境
func IsDevelopment() bool {
	return Version == "dev"
}

// VersionString 用于 version 命令与 /version 接口
func VersionString() string {
	commit := CommitHash
	if commit == "" {
		commit = "n/a"
	}
	if BuildTime == "" {
		return fmt.Sprintf("%s (%s)", Version, commit)
	}
	return fmt.Sprintf("%s (%s, built %s)", Version, commit, BuildTime)
}
