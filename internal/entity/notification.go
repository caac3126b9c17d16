package entity

import "github.com/rwa-lab/backend/pkg/enum"

type NotificationType string

var (
	NotificationTrade      = enum.New(NotificationType("trade"))
	NotificationInvestment = enum.New(NotificationType("investment"))
	NotificationKYC        = enum.New(NotificationType("kyc"))
	NotificationAdmin      = enum.New(NotificationType("admin"))
	NotificationOther      = enum.New(NotificationType("other"))
)

type Notification struct {
	Base

	UserID  string `gorm:"index"`
	Type    NotificationType
	Message string
	Read    bool `gorm:"column:is_read"`
}
