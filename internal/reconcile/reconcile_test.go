package reconcile

import (
	"testing"
	"time"

	"github.com/anoixa/memory-lane/database/models"
	"github.com/anoixa/memory-lane/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func current(urls ...string) []models.Image {
	out := make([]models.Image, 0, len(urls))
	for _, u := range urls {
		out = append(out, models.Image{ID: "id-" + u, URL: u, Name: u})
	}
	return out
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name       string
		current    []models.Image
		desired    []ImageInput
		wantDelete []string
		wantCreate []string
		wantKeep   []string
	}{
		{
			name:       "replace one of two",
			current:    current("a", "b"),
			desired:    []ImageInput{{URL: "b", Name: "b"}, {URL: "c", Name: "c"}},
			wantDelete: []string{"id-a"},
			wantCreate: []string{"c"},
			wantKeep:   []string{"b"},
		},
		{
			name:       "no current images",
			current:    nil,
			desired:    []ImageInput{{URL: "x", Name: "n1"}},
			wantDelete: []string{},
			wantCreate: []string{"x"},
			wantKeep:   []string{},
		},
		{
			name:       "same set renames only",
			current:    current("a"),
			desired:    []ImageInput{{URL: "a", Name: "new name"}},
			wantDelete: []string{},
			wantCreate: []string{},
			wantKeep:   []string{"a"},
		},
		{
			name:       "disjoint sets",
			current:    current("a", "b"),
			desired:    []ImageInput{{URL: "c", Name: "c"}},
			wantDelete: []string{"id-a", "id-b"},
			wantCreate: []string{"c"},
			wantKeep:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Reconcile(tt.current, tt.desired)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDelete, plan.ToDelete)
			assert.Equal(t, tt.wantCreate, plan.ToCreate)
			assert.Equal(t, tt.wantKeep, plan.ToKeep)

			// 最终 url 集合与目标一致
			final := map[string]bool{}
			deleted := map[string]bool{}
			for _, id := range plan.ToDelete {
				deleted[id] = true
			}
			for _, img := range tt.current {
				if !deleted[img.ID] {
					final[img.URL] = true
				}
			}
			for _, img := range plan.ToUpsert {
				final[img.URL] = true
			}
			want := map[string]bool{}
			for _, img := range tt.desired {
				want[img.URL] = true
			}
			assert.Equal(t, want, final)
		})
	}
}

func TestReconcile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		desired []ImageInput
		msg     string
	}{
		{"empty", []ImageInput{}, "At least one image is required"},
		{"nil", nil, "At least one image is required"},
		{"missing url", []ImageInput{{URL: " ", Name: "n"}}, "Image 1: url is required"},
		{"missing name", []ImageInput{{URL: "a", Name: "a"}, {URL: "b"}}, "Image 2: name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reconcile(current("a"), tt.desired)
			require.Error(t, err)
			assert.True(t, apperr.IsValidation(err))
			assert.Equal(t, tt.msg, apperr.MessageOf(err))
		})
	}
}

func TestDedupe(t *testing.T) {
	out := Dedupe([]ImageInput{
		{URL: "a", Name: "first"},
		{URL: "b", Name: "b"},
		{URL: "a", Name: "last"},
	})

	require.Len(t, out, 2)
	assert.Equal(t, ImageInput{URL: "a", Name: "last"}, out[0])
	assert.Equal(t, ImageInput{URL: "b", Name: "b"}, out[1])
}

func TestToModels(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := ToModels("e1", []ImageInput{{URL: "a", Name: "n"}, {URL: "b", Name: "m"}, {URL: "c", Name: "o"}}, base)
	require.Len(t, rows, 3)
	assert.Equal(t, "a", rows[0].URL)
	assert.Equal(t, "n", rows[0].Name)
	assert.Equal(t, "e1", rows[0].EventID)
	assert.Empty(t, rows[0].ID)
	assert.Equal(t, base, rows[0].CreatedAt)

	// created_at 严格递增，保证读取顺序与提交顺序一致
	for i := 1; i < len(rows); i++ {
		assert.True(t, rows[i].CreatedAt.After(rows[i-1].CreatedAt), "row %d", i)
	}
}

func TestNextCreatedAt(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, now, NextCreatedAt(nil, now))
	assert.Equal(t, now, NextCreatedAt([]models.Image{{CreatedAt: now.Add(-time.Second)}}, now))

	// 现有图片的时间不早于 now 时，顺延到最晚一张之后
	latest := now.Add(3 * time.Millisecond)
	got := NextCreatedAt([]models.Image{{CreatedAt: now}, {CreatedAt: latest}, {CreatedAt: now.Add(time.Millisecond)}}, now)
	assert.Equal(t, latest.Add(time.Millisecond), got)
}
