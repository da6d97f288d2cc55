// Package pagination 解析分页参数并计算分页元数据
package pagination

import (
	"math"
	"regexp"
	"strconv"

	"github.com/anoixa/memory-lane/internal/apperr"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Sort 排序方向
type Sort string

const (
	// SortOlder timestamp、createdAt 升序
	SortOlder Sort = "older"
	// SortNewer timestamp、createdAt 降序
	SortNewer Sort = "newer"
)

var digits = regexp.MustCompile(`^\d+$`)

// PageQuery 已校验的分页请求
type PageQuery struct {
	Page  int
	Limit int
	Sort  Sort
}

// Pagination 响应中的分页信息
type Pagination struct {
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// Parse 解析原始查询参数，空字符串使用默认值
func Parse(rawPage, rawLimit, rawSort string) (PageQuery, error) {
	q := PageQuery{Page: DefaultPage, Limit: DefaultLimit, Sort: SortOlder}

	if rawPage != "" {
		n, err := parsePositive(rawPage)
		if err != nil {
			return PageQuery{}, apperr.Validation("Page must be a positive integer")
		}
		q.Page = n
	}

	if rawLimit != "" {
		n, err := parsePositive(rawLimit)
		if err != nil {
			return PageQuery{}, apperr.Validation("Limit must be a positive integer")
		}
		q.Limit = n
	}

	switch Sort(rawSort) {
	case "":
	case SortOlder, SortNewer:
		q.Sort = Sort(rawSort)
	default:
		return PageQuery{}, apperr.Validation("Sort must be one of: older, newer")
	}

	return q, nil
}

func parsePositive(raw string) (int, error) {
	if !digits.MatchString(raw) {
		return 0, strconv.ErrSyntax
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

// Offset 跳过的记录数，溢出时取 math.MaxInt
func (q PageQuery) Offset() int {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// Desc 是否倒序
func (q PageQuery) Desc() bool {
	return q.Sort == SortNewer
}

// New 根据总数计算分页信息，pages = ceil(total / limit)
func New(total int64, q PageQuery) Pagination {
	pages := 0
	if q.Limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(q.Limit)))
	}
	return Pagination{
		Total: total,
		Pages: pages,
		Page:  q.Page,
		Limit: q.Limit,
	}
}
