package utils

import (
	"os"
	"strings"
	"unicode"

	"github.com/anoixa/memory-lane/config"
	log "github.com/sirupsen/logrus"
)

// InitLogger 初始化 logrus，format 支持 text / json
func InitLogger(level, format string) {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stdout)

	if strings.EqualFold(format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}

// LogIfDev 仅在开发环境输出调试日志
func LogIfDev(msg string) {
	if config.IsDevelopment() {
		log.Debug(msg)
	}
}

// LogIfDevf 仅在开发环境输出调试日志
func LogIfDevf(format string, args ...interface{}) {
	if config.IsDevelopment() {
		log.Debugf(format, args...)
	}
}

func SanitizeLogMessage(msg string) string {
	var sb strings.Builder
	for _, r := range msg {
		if r == 10 || r == 9 {
			sb.WriteRune(r)
		} else if unicode.IsPrint(r) || unicode.IsGraphic(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// SanitizeLogEmail 截断并清理邮箱，避免日志注入
func SanitizeLogEmail(email string) string {
	if len(email) > 64 {
		email = email[:64] + "..."
	}
	return SanitizeLogMessage(email)
}
