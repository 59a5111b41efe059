package order

import (
	"github.com/xiebiao/jpashop/internal/domain/address"
)

// DeliveryStatus 配送状态
type DeliveryStatus string

const (
	DeliveryStatusReady DeliveryStatus = "READY" // 待配送
	DeliveryStatusComp  DeliveryStatus = "COMP"  // 配送完成
)

// Delivery 配送信息(属于订单聚合,与订单一对一)
type Delivery struct {
	ID      uint
	Address address.Address
	Status  DeliveryStatus
}

// NewDelivery 以会员地址创建待配送的配送信息
func NewDelivery(addr address.Address) *Delivery {
	return &Delivery{
		Address: addr,
		Status:  DeliveryStatusReady,
	}
}
