package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID            string    `bun:"id,pk" json:"id"`
	Name          string    `bun:"name,notnull" json:"name"`
	Email         string    `bun:"email,unique,notnull" json:"email"`
	PasswordHash  string    `bun:"password_hash,notnull" json:"-"`
	Role          Role      `bun:"role,notnull" json:"role"`
	WalletBalance float64   `bun:"wallet_balance,notnull,default:0" json:"wallet_balance"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"created_at"`
}
