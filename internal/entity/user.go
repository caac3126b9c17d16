package entity

import (
	"time"

	"github.com/rwa-lab/backend/pkg/enum"
)

type KYCStatus string

var (
	KYCNotSubmitted = enum.New(KYCStatus("not_submitted"))
	KYCPending      = enum.New(KYCStatus("pending"))
	KYCApproved     = enum.New(KYCStatus("approved"))
	KYCRejected     = enum.New(KYCStatus("rejected"))
)

type Role string

var (
	RoleUser  = enum.New(Role("user"))
	RoleAdmin = enum.New(Role("admin"))
)

type UserProfile struct {
	Bio    string `json:"bio"`
	Avatar string `json:"avatar"`
}

type User struct {
	ID            string `gorm:"primaryKey"`
	Username      string
	Email         string
	WalletAddress string `gorm:"index"`
	Profile       JSON[UserProfile]
	KYCStatus     KYCStatus `gorm:"column:kyc_status"`
	Role          Role      `gorm:"index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
