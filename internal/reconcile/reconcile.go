// Package reconcile 计算事件当前图片集合与目标集合之间的差异
package reconcile

import (
	"strings"
	"time"

	"github.com/anoixa/memory-lane/database/models"
	"github.com/anoixa/memory-lane/internal/apperr"
)

// ImageInput 客户端提交的目标图片
type ImageInput struct {
	URL  string `json:"url" validate:"required,url"`
	Name string `json:"name" validate:"required"`
}

// Plan 一次更新需要执行的写操作
type Plan struct {
	// ToDelete 当前存在但目标中没有的图片 ID
	ToDelete []string
	// ToUpsert 按 url 去重后的目标图片，保持首次出现的位置，名称取最后一次
	ToUpsert []ImageInput
	// ToCreate 需要新建的 url
	ToCreate []string
	// ToKeep 保留并更新名称的 url
	ToKeep []string
}

// Dedupe 按 url 去重，保留首次出现的位置，名称以最后一次为准
func Dedupe(desired []ImageInput) []ImageInput {
	index := make(map[string]int, len(desired))
	out := make([]ImageInput, 0, len(desired))
	for _, img := range desired {
		if i, ok := index[img.URL]; ok {
			out[i].Name = img.Name
			continue
		}
		index[img.URL] = len(out)
		out = append(out, img)
	}
	return out
}

// NextCreatedAt 新增图片的起始时间，晚于当前所有图片
func NextCreatedAt(current []models.Image, now time.Time) time.Time {
	for _, img := range current {
		if !now.After(img.CreatedAt) {
			now = img.CreatedAt.Add(time.Millisecond)
		}
	}
	return now
}

// Check 目标集合不能为空，每项必须有 url 和 name
func Check(desired []ImageInput) error {
	if len(desired) == 0 {
		return apperr.Validation("At least one image is required")
	}
	for i, img := range desired {
		if strings.TrimSpace(img.URL) == "" {
			return apperr.Validationf("Image %d: url is required", i+1)
		}
		if strings.TrimSpace(img.Name) == "" {
			return apperr.Validationf("Image %d: name is required", i+1)
		}
	}
	return nil
}

// Reconcile 计算从 current 变为 desired 所需的删除与 upsert，不访问存储
func Reconcile(current []models.Image, desired []ImageInput) (Plan, error) {
	if err := Check(desired); err != nil {
		return Plan{}, err
	}

	upserts := Dedupe(desired)
	wanted := make(map[string]struct{}, len(upserts))
	for _, img := range upserts {
		wanted[img.URL] = struct{}{}
	}

	plan := Plan{
		ToDelete: []string{},
		ToUpsert: upserts,
		ToCreate: []string{},
		ToKeep:   []string{},
	}

	existing := make(map[string]struct{}, len(current))
	for _, img := range current {
		if _, ok := wanted[img.URL]; !ok {
			plan.ToDelete = append(plan.ToDelete, img.ID)
			continue
		}
		existing[img.URL] = struct{}{}
	}

	for _, img := range upserts {
		if _, ok := existing[img.URL]; ok {
			plan.ToKeep = append(plan.ToKeep, img.URL)
		} else {
			plan.ToCreate = append(plan.ToCreate, img.URL)
		}
	}

	return plan, nil
}

// ToModels 转为待写入的图片行
// 从 base 开始 created_at 依次递增 1ms，读取时按 created_at 排序即为提交顺序
func ToModels(eventID string, images []ImageInput, base time.Time) []models.Image {
	out := make([]models.Image, 0, len(images))
	for i, img := range images {
		out = append(out, models.Image{
			URL:       img.URL,
			Name:      img.Name,
			EventID:   eventID,
			CreatedAt: base.Add(time.Duration(i) * time.Millisecond),
		})
	}
	return out
}
