package model

import "time"

// Tenant is one seller account ("cabinet") with its own API credential.
// Tenants are owned by configuration; the sync pipeline never mutates them.
type Tenant struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Token     string    `db:"token"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
