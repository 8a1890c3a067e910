package service

import (
	"github.com/maruko-pickup/api/internal/document"
	"github.com/maruko-pickup/api/internal/notify"
)

// ConfirmationMessage builds the customer confirmation payload for an order.
func ConfirmationMessage(o document.Order) notify.Message {
	msg := notify.Message{
		OrderNumber:       o.OrderNumber,
		CustomerName:      o.CustomerName,
		CustomerEmail:     o.CustomerEmail,
		CustomerPhone:     o.CustomerPhone,
		PickupDate:        o.PickupDate,
		PickupTime:        o.PickupTime,
		TotalAmount:       o.TotalAmount,
		PriceUndetermined: o.PriceUndetermined,
		Items:             make([]notify.MessageItem, len(o.Items)),
	}
	for i, it := range o.Items {
		msg.Items[i] = notify.MessageItem{
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Usage:       it.Usage,
			Flavor:      it.Flavor,
			Remarks:     it.Remarks,
		}
	}
	return msg
}
