// Package domain defines the back-office records whose text fields are encrypted
// at rest. Every struct here holds plaintext in memory; the stored form of the
// sensitive fields is an EncryptedField ("ivHex:cipherHex") produced by the
// record codec. Ids, foreign keys, timestamps and flags are never encrypted.
package domain

import (
	"database/sql"
	"time"
)

// Customer is a shop customer. Name, Phone, Company, Address and Notes are encrypted.
type Customer struct {
	ID        int64
	Name      string
	Phone     string
	Company   *string
	Address   *string
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// InventoryItem is a rentable item. Name and Category are encrypted.
type InventoryItem struct {
	ID   int64
	Name string
	// Category is the display category (e.g. "Áo Dài"). It drives the formatted id.
	Category string
	// CategoryCounter is the per-category sequence number assigned on insert.
	CategoryCounter int64
	ImageURL        *string
	Description     *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// InventorySizeRow is the stored shape of an inventory size: every sensitive field,
// numeric ones included, is an EncryptedField (or legacy plaintext) string.
type InventorySizeRow struct {
	ID       int64
	ItemID   int64
	Title    string
	Quantity string
	OnHand   string
	Price    string
}

// InventorySize is the decrypted form of InventorySizeRow.
//
// A numeric field whose decrypted text is not an integer has Valid set to false.
// Callers must check Valid before using the value.
type InventorySize struct {
	ID       int64
	ItemID   int64
	Title    string
	Quantity sql.NullInt64
	OnHand   sql.NullInt64
	Price    sql.NullInt64
}

// Complete reports whether every numeric field decoded.
func (s InventorySize) Complete() bool {
	return s.Quantity.Valid && s.OnHand.Valid && s.Price.Valid
}

// Tag is a label attached to inventory items. Name is encrypted.
type Tag struct {
	ID   int64
	Name string
}

// ItemTag is one tag resolved for an inventory item through the join table.
type ItemTag struct {
	ItemID int64
	TagID  int64
	Name   string
}

// User is a back-office employee. Name, Role and Status are encrypted.
// EmployeeKeyHash is a lookup hash of the employee key, never encrypted, and is
// the only user field that supports equality lookup on its own.
type User struct {
	ID              int64
	Name            string
	Role            string
	Status          string
	EmployeeKeyHash string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Order is a rental order. The identity document fields are encrypted.
type Order struct {
	ID            int64
	CustomerID    int64
	DocumentType  *string
	DocumentOther *string
	DocumentName  *string
	DocumentID    *string
	Total         int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderItem is one rented item line on an order. Name and Size are encrypted.
type OrderItem struct {
	ID       int64
	OrderID  int64
	ItemID   *int64
	Name     string
	Size     string
	Quantity int64
	Price    int64
}

// OrderNote is a free-text note on an order. Text is encrypted.
type OrderNote struct {
	ID        int64
	OrderID   int64
	Text      string
	CreatedAt time.Time
}
