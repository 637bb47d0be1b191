package domain

import (
	"fmt"
	"strings"
)

type SortOrder struct {
	Sort  string `bson:"sort" json:"sort"`   // 排序字段
	Order string `bson:"order" json:"order"` // 排序方式（asc 或 desc）
}

// ParseSortOrders 解析 "field:order" 格式的排序参数，order 省略时为 asc
func ParseSortOrders(values []string) ([]SortOrder, error) {
	orders := make([]SortOrder, 0, len(values))
	for _, v := range values {
		field, order, _ := strings.Cut(strings.TrimSpace(v), ":")
		if field == "" {
			return nil, fmt.Errorf("%w: sort参数格式应为field:order", ErrInvalidQuery)
		}
		orders = append(orders, SortOrder{Sort: field, Order: order})
	}
	return orders, nil
}

func (s SortOrder) Descending() bool {
	return strings.EqualFold(s.Order, "desc")
}
