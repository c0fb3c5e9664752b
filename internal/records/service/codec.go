// Package service provides the record codec: the per-entity list of encrypted
// fields and the transforms between plaintext records and their stored form.
package service

import (
	"database/sql"
	"log/slog"
	"strconv"
	"strings"

	cryptoDomain "github.com/rentaldesk/searchsync/internal/crypto/domain"
	cryptoService "github.com/rentaldesk/searchsync/internal/crypto/service"
	recordsDomain "github.com/rentaldesk/searchsync/internal/records/domain"
)

// Codec encrypts records before they are written and decrypts them after they are read.
//
// Decryption never fails. Values that are not ciphertext are returned as-is, and
// values that look like ciphertext but do not decrypt are returned unchanged and
// logged at WARN with the entity and field name (never the value).
type Codec struct {
	cipher cryptoService.FieldCipher
	hasher cryptoService.HashService
	logger *slog.Logger
}

// NewCodec creates a Codec.
func NewCodec(
	cipher cryptoService.FieldCipher,
	hasher cryptoService.HashService,
	logger *slog.Logger,
) *Codec {
	return &Codec{cipher: cipher, hasher: hasher, logger: logger}
}

// EncryptCustomer encrypts name, phone, company, address and notes.
func (c *Codec) EncryptCustomer(v recordsDomain.Customer) recordsDomain.Customer {
	v.Name = c.cipher.Encrypt(v.Name)
	v.Phone = c.cipher.Encrypt(v.Phone)
	v.Company = c.cipher.EncryptOptional(v.Company)
	v.Address = c.cipher.EncryptOptional(v.Address)
	v.Notes = c.cipher.EncryptOptional(v.Notes)
	return v
}

// DecryptCustomer reverses EncryptCustomer.
func (c *Codec) DecryptCustomer(v recordsDomain.Customer) recordsDomain.Customer {
	const entity = "customer"
	v.Name = c.open(entity, v.ID, "name", v.Name)
	v.Phone = c.open(entity, v.ID, "phone", v.Phone)
	v.Company = c.openOptional(entity, v.ID, "company", v.Company)
	v.Address = c.openOptional(entity, v.ID, "address", v.Address)
	v.Notes = c.openOptional(entity, v.ID, "notes", v.Notes)
	return v
}

// EncryptInventoryItem encrypts name and category.
func (c *Codec) EncryptInventoryItem(v recordsDomain.InventoryItem) recordsDomain.InventoryItem {
	v.Name = c.cipher.Encrypt(v.Name)
	v.Category = c.cipher.Encrypt(v.Category)
	return v
}

// DecryptInventoryItem reverses EncryptInventoryItem.
func (c *Codec) DecryptInventoryItem(v recordsDomain.InventoryItem) recordsDomain.InventoryItem {
	v, _ = c.OpenInventoryItem(v)
	return v
}

// OpenInventoryItem is DecryptInventoryItem plus the names of the fields that
// looked encrypted but did not decrypt.
func (c *Codec) OpenInventoryItem(v recordsDomain.InventoryItem) (recordsDomain.InventoryItem, []string) {
	r := c.reader("inventory_item", v.ID)
	v.Name = r.text("name", v.Name)
	v.Category = r.text("category", v.Category)
	return v, r.undecryptable
}

// EncryptInventorySize encrypts the title and the decimal text of each numeric field.
// Invalid numerics are stored as empty strings.
func (c *Codec) EncryptInventorySize(v recordsDomain.InventorySize) recordsDomain.InventorySizeRow {
	return recordsDomain.InventorySizeRow{
		ID:       v.ID,
		ItemID:   v.ItemID,
		Title:    c.cipher.Encrypt(v.Title),
		Quantity: c.cipher.Encrypt(formatInt(v.Quantity)),
		OnHand:   c.cipher.Encrypt(formatInt(v.OnHand)),
		Price:    c.cipher.Encrypt(formatInt(v.Price)),
	}
}

// DecryptInventorySize reverses EncryptInventorySize. A numeric field that does not
// parse as an integer comes back with Valid set to false.
func (c *Codec) DecryptInventorySize(v recordsDomain.InventorySizeRow) recordsDomain.InventorySize {
	size, _ := c.OpenInventorySize(v)
	return size
}

// OpenInventorySize is DecryptInventorySize plus the names of the fields that
// looked encrypted but did not decrypt.
func (c *Codec) OpenInventorySize(v recordsDomain.InventorySizeRow) (recordsDomain.InventorySize, []string) {
	r := c.reader("inventory_size", v.ID)
	return recordsDomain.InventorySize{
		ID:       v.ID,
		ItemID:   v.ItemID,
		Title:    r.text("title", v.Title),
		Quantity: r.integer("quantity", v.Quantity),
		OnHand:   r.integer("on_hand", v.OnHand),
		Price:    r.integer("price", v.Price),
	}, r.undecryptable
}

// EncryptTag encrypts the tag name.
func (c *Codec) EncryptTag(v recordsDomain.Tag) recordsDomain.Tag {
	v.Name = c.cipher.Encrypt(v.Name)
	return v
}

// DecryptTag reverses EncryptTag.
func (c *Codec) DecryptTag(v recordsDomain.Tag) recordsDomain.Tag {
	v.Name = c.open("tag", v.ID, "name", v.Name)
	return v
}

// DecryptItemTag decrypts the tag name of a joined item tag row.
func (c *Codec) DecryptItemTag(v recordsDomain.ItemTag) recordsDomain.ItemTag {
	v, _ = c.OpenItemTag(v)
	return v
}

// OpenItemTag is DecryptItemTag plus whether the name failed to decrypt.
func (c *Codec) OpenItemTag(v recordsDomain.ItemTag) (recordsDomain.ItemTag, bool) {
	r := c.reader("tag", v.TagID)
	v.Name = r.text("name", v.Name)
	return v, len(r.undecryptable) == 0
}

// EncryptUser encrypts name, role and status. EmployeeKeyHash is left untouched.
func (c *Codec) EncryptUser(v recordsDomain.User) recordsDomain.User {
	v.Name = c.cipher.Encrypt(v.Name)
	v.Role = c.cipher.Encrypt(v.Role)
	v.Status = c.cipher.Encrypt(v.Status)
	return v
}

// DecryptUser reverses EncryptUser.
func (c *Codec) DecryptUser(v recordsDomain.User) recordsDomain.User {
	const entity = "user"
	v.Name = c.open(entity, v.ID, "name", v.Name)
	v.Role = c.open(entity, v.ID, "role", v.Role)
	v.Status = c.open(entity, v.ID, "status", v.Status)
	return v
}

// HashEmployeeKey returns the lookup hash stored in User.EmployeeKeyHash.
// Surrounding whitespace is ignored and the key is matched case-insensitively.
func (c *Codec) HashEmployeeKey(key string) string {
	return c.hasher.Hash([]byte(strings.ToUpper(strings.TrimSpace(key))))
}

// EncryptOrder encrypts the identity document fields.
func (c *Codec) EncryptOrder(v recordsDomain.Order) recordsDomain.Order {
	v.DocumentType = c.cipher.EncryptOptional(v.DocumentType)
	v.DocumentOther = c.cipher.EncryptOptional(v.DocumentOther)
	v.DocumentName = c.cipher.EncryptOptional(v.DocumentName)
	v.DocumentID = c.cipher.EncryptOptional(v.DocumentID)
	return v
}

// DecryptOrder reverses EncryptOrder.
func (c *Codec) DecryptOrder(v recordsDomain.Order) recordsDomain.Order {
	const entity = "order"
	v.DocumentType = c.openOptional(entity, v.ID, "document_type", v.DocumentType)
	v.DocumentOther = c.openOptional(entity, v.ID, "document_other", v.DocumentOther)
	v.DocumentName = c.openOptional(entity, v.ID, "document_name", v.DocumentName)
	v.DocumentID = c.openOptional(entity, v.ID, "document_id", v.DocumentID)
	return v
}

// EncryptOrderItem encrypts name and size.
func (c *Codec) EncryptOrderItem(v recordsDomain.OrderItem) recordsDomain.OrderItem {
	v.Name = c.cipher.Encrypt(v.Name)
	v.Size = c.cipher.Encrypt(v.Size)
	return v
}

// DecryptOrderItem reverses EncryptOrderItem.
func (c *Codec) DecryptOrderItem(v recordsDomain.OrderItem) recordsDomain.OrderItem {
	const entity = "order_item"
	v.Name = c.open(entity, v.ID, "name", v.Name)
	v.Size = c.open(entity, v.ID, "size", v.Size)
	return v
}

// EncryptOrderNote encrypts the note text.
func (c *Codec) EncryptOrderNote(v recordsDomain.OrderNote) recordsDomain.OrderNote {
	v.Text = c.cipher.Encrypt(v.Text)
	return v
}

// DecryptOrderNote reverses EncryptOrderNote.
func (c *Codec) DecryptOrderNote(v recordsDomain.OrderNote) recordsDomain.OrderNote {
	v.Text = c.open("order_note", v.ID, "text", v.Text)
	return v
}

func (c *Codec) open(entity string, id int64, field, value string) string {
	return c.reader(entity, id).text(field, value)
}

func (c *Codec) openOptional(entity string, id int64, field string, value *string) *string {
	if value == nil {
		return nil
	}
	plaintext := c.open(entity, id, field, *value)
	return &plaintext
}

// fieldReader decrypts the fields of one record and collects the ones that
// did not decrypt.
type fieldReader struct {
	codec         *Codec
	entity        string
	id            int64
	undecryptable []string
}

func (c *Codec) reader(entity string, id int64) *fieldReader {
	return &fieldReader{codec: c, entity: entity, id: id}
}

func (r *fieldReader) text(field, value string) string {
	plaintext, status := r.codec.cipher.Open(value)
	if status == cryptoDomain.StatusUndecryptable {
		r.undecryptable = append(r.undecryptable, field)
		r.codec.logger.Warn("encrypted field could not be decrypted, returning stored value",
			slog.String("entity", r.entity),
			slog.Int64("id", r.id),
			slog.String("field", field),
		)
	}
	return plaintext
}

func (r *fieldReader) integer(field, value string) sql.NullInt64 {
	text := strings.TrimSpace(r.text(field, value))
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		r.codec.logger.Warn("numeric field is not an integer",
			slog.String("entity", r.entity),
			slog.Int64("id", r.id),
			slog.String("field", field),
		)
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: n, Valid: true}
}

func formatInt(v sql.NullInt64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatInt(v.Int64, 10)
}
