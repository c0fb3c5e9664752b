package service

import (
	"bytes"
	"database/sql"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/rentaldesk/searchsync/internal/crypto/domain"
	cryptoService "github.com/rentaldesk/searchsync/internal/crypto/service"
	recordsDomain "github.com/rentaldesk/searchsync/internal/records/domain"
)

func newTestCodec(t *testing.T, out io.Writer) (*Codec, cryptoService.FieldCipher) {
	t.Helper()
	key, err := cryptoDomain.ParseFieldKey(strings.Repeat("42", 32))
	require.NoError(t, err)
	cipher, err := cryptoService.NewAESCBCFieldCipher(key)
	require.NoError(t, err)

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewCodec(cipher, cryptoService.NewSHA256HashService(), logger), cipher
}

func strPtr(s string) *string { return &s }

func TestCodec_Customer(t *testing.T) {
	codec, cipher := newTestCodec(t, io.Discard)
	now := time.Now().UTC()

	customer := recordsDomain.Customer{
		ID:        10,
		Name:      "Trần Thị Bích",
		Phone:     "0909123456",
		Company:   strPtr("Studio Hoa Sen"),
		Address:   nil,
		Notes:     strPtr(""),
		CreatedAt: now,
		UpdatedAt: now,
	}

	encrypted := codec.EncryptCustomer(customer)
	assert.Equal(t, int64(10), encrypted.ID)
	assert.Equal(t, now, encrypted.CreatedAt)
	assert.Equal(t, cipher.Encrypt("Trần Thị Bích"), encrypted.Name)
	assert.Equal(t, cipher.Encrypt("0909123456"), encrypted.Phone)
	assert.True(t, cryptoService.IsEncrypted(*encrypted.Company))
	assert.Nil(t, encrypted.Address)
	require.NotNil(t, encrypted.Notes)
	assert.True(t, cryptoService.IsEncrypted(*encrypted.Notes))

	// input is not mutated
	assert.Equal(t, "Studio Hoa Sen", *customer.Company)

	assert.Equal(t, customer, codec.DecryptCustomer(encrypted))
}

func TestCodec_LegacyPlaintext(t *testing.T) {
	var buf bytes.Buffer
	codec, _ := newTestCodec(t, &buf)

	legacy := recordsDomain.Customer{ID: 3, Name: "Lê Văn Tám", Phone: "0123"}
	assert.Equal(t, legacy, codec.DecryptCustomer(legacy))
	assert.Empty(t, buf.String())
}

func TestCodec_UndecryptableIsLogged(t *testing.T) {
	var buf bytes.Buffer
	codec, _ := newTestCodec(t, &buf)

	item := codec.DecryptInventoryItem(recordsDomain.InventoryItem{ID: 5, Name: "ab:cd", Category: "Váy"})
	assert.Equal(t, "ab:cd", item.Name)
	assert.Equal(t, "Váy", item.Category)

	logged := buf.String()
	assert.Contains(t, logged, `"level":"WARN"`)
	assert.Contains(t, logged, `"entity":"inventory_item"`)
	assert.Contains(t, logged, `"field":"name"`)
	assert.NotContains(t, logged, "ab:cd")
}

func TestCodec_OpenReportsUndecryptableFields(t *testing.T) {
	codec, _ := newTestCodec(t, io.Discard)

	item, undecryptable := codec.OpenInventoryItem(codec.EncryptInventoryItem(recordsDomain.InventoryItem{
		ID: 1, Name: "12:34", Category: "Vest",
	}))
	assert.Equal(t, "12:34", item.Name)
	assert.Empty(t, undecryptable)

	item, undecryptable = codec.OpenInventoryItem(recordsDomain.InventoryItem{ID: 2, Name: "ab:cd", Category: "ef:01"})
	assert.Equal(t, "ab:cd", item.Name)
	assert.Equal(t, []string{"name", "category"}, undecryptable)

	size, undecryptable := codec.OpenInventorySize(recordsDomain.InventorySizeRow{
		ID: 3, ItemID: 1, Title: "38:40", Quantity: "ab:cd", OnHand: "1", Price: "2",
	})
	assert.Equal(t, "38:40", size.Title)
	assert.False(t, size.Quantity.Valid)
	assert.Equal(t, []string{"title", "quantity"}, undecryptable)

	tag, ok := codec.OpenItemTag(recordsDomain.ItemTag{ItemID: 1, TagID: 4, Name: codec.EncryptTag(recordsDomain.Tag{Name: "2024:10"}).Name})
	assert.True(t, ok)
	assert.Equal(t, "2024:10", tag.Name)

	_, ok = codec.OpenItemTag(recordsDomain.ItemTag{ItemID: 1, TagID: 5, Name: "2024:10"})
	assert.False(t, ok)
}

func TestCodec_InventoryItem(t *testing.T) {
	codec, _ := newTestCodec(t, io.Discard)

	item := recordsDomain.InventoryItem{
		ID:              1,
		Name:            "Áo dài lụa đỏ",
		Category:        "Áo Dài",
		CategoryCounter: 7,
		ImageURL:        strPtr("https://cdn.example.com/1.jpg"),
	}

	encrypted := codec.EncryptInventoryItem(item)
	assert.True(t, cryptoService.IsEncrypted(encrypted.Name))
	assert.True(t, cryptoService.IsEncrypted(encrypted.Category))
	assert.Equal(t, int64(7), encrypted.CategoryCounter)
	assert.Equal(t, item.ImageURL, encrypted.ImageURL)

	assert.Equal(t, item, codec.DecryptInventoryItem(encrypted))
}

func TestCodec_InventorySize(t *testing.T) {
	codec, cipher := newTestCodec(t, io.Discard)

	t.Run("round trip", func(t *testing.T) {
		size := recordsDomain.InventorySize{
			ID:       2,
			ItemID:   1,
			Title:    "M",
			Quantity: sql.NullInt64{Int64: 4, Valid: true},
			OnHand:   sql.NullInt64{Int64: 3, Valid: true},
			Price:    sql.NullInt64{Int64: 350000, Valid: true},
		}

		row := codec.EncryptInventorySize(size)
		assert.Equal(t, cipher.Encrypt("350000"), row.Price)
		assert.Equal(t, cipher.Encrypt("4"), row.Quantity)
		assert.Equal(t, size, codec.DecryptInventorySize(row))
	})

	t.Run("legacy plaintext numbers", func(t *testing.T) {
		size := codec.DecryptInventorySize(recordsDomain.InventorySizeRow{
			ID: 3, ItemID: 1, Title: "L", Quantity: "2", OnHand: " 1 ", Price: "100",
		})
		assert.True(t, size.Complete())
		assert.Equal(t, int64(1), size.OnHand.Int64)
	})

	t.Run("unparsable number is invalid, not a failure", func(t *testing.T) {
		size := codec.DecryptInventorySize(recordsDomain.InventorySizeRow{
			ID:       4,
			ItemID:   1,
			Title:    cipher.Encrypt("XL"),
			Quantity: cipher.Encrypt("many"),
			OnHand:   "",
			Price:    cipher.Encrypt("12.5"),
		})
		assert.Equal(t, "XL", size.Title)
		assert.False(t, size.Quantity.Valid)
		assert.False(t, size.OnHand.Valid)
		assert.False(t, size.Price.Valid)
		assert.False(t, size.Complete())
	})
}

func TestCodec_TagsAndUsers(t *testing.T) {
	codec, _ := newTestCodec(t, io.Discard)

	tag := recordsDomain.Tag{ID: 9, Name: "Cưới hỏi"}
	assert.Equal(t, tag, codec.DecryptTag(codec.EncryptTag(tag)))

	itemTag := recordsDomain.ItemTag{ItemID: 1, TagID: 9, Name: codec.EncryptTag(tag).Name}
	assert.Equal(t, "Cưới hỏi", codec.DecryptItemTag(itemTag).Name)

	user := recordsDomain.User{
		ID:              1,
		Name:            "Phạm Minh",
		Role:            "admin",
		Status:          "active",
		EmployeeKeyHash: codec.HashEmployeeKey("emp-01"),
	}
	encrypted := codec.EncryptUser(user)
	assert.Equal(t, user.EmployeeKeyHash, encrypted.EmployeeKeyHash)
	assert.NotEqual(t, user.Role, encrypted.Role)
	assert.Equal(t, user, codec.DecryptUser(encrypted))
}

func TestCodec_HashEmployeeKey(t *testing.T) {
	codec, _ := newTestCodec(t, io.Discard)

	assert.Equal(t, codec.HashEmployeeKey("EMP-01"), codec.HashEmployeeKey(" emp-01 "))
	assert.NotEqual(t, codec.HashEmployeeKey("EMP-01"), codec.HashEmployeeKey("EMP-02"))
	assert.Len(t, codec.HashEmployeeKey("EMP-01"), 64)
}

func TestCodec_Orders(t *testing.T) {
	codec, _ := newTestCodec(t, io.Discard)

	order := recordsDomain.Order{
		ID:           20,
		CustomerID:   10,
		DocumentType: strPtr("cccd"),
		DocumentName: strPtr("Căn cước công dân"),
		DocumentID:   strPtr("079123456789"),
		Total:        700000,
	}
	encrypted := codec.EncryptOrder(order)
	assert.Nil(t, encrypted.DocumentOther)
	assert.True(t, cryptoService.IsEncrypted(*encrypted.DocumentID))
	assert.Equal(t, int64(700000), encrypted.Total)
	assert.Equal(t, order, codec.DecryptOrder(encrypted))

	itemID := int64(1)
	line := recordsDomain.OrderItem{ID: 1, OrderID: 20, ItemID: &itemID, Name: "Áo dài", Size: "M", Quantity: 1, Price: 350000}
	assert.Equal(t, line, codec.DecryptOrderItem(codec.EncryptOrderItem(line)))

	note := recordsDomain.OrderNote{ID: 1, OrderID: 20, Text: "Khách hẹn trả ngày 20"}
	assert.Equal(t, note, codec.DecryptOrderNote(codec.EncryptOrderNote(note)))
}
