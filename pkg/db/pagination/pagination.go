package pagination

import (
	"encoding/base64"
	"encoding/json"

	"gorm.io/gorm"
)

type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size,default=20" validate:"gte=1,lte=100"` // Min 1, Max 100
}

type Cursor struct {
	ID        string `json:"id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token"`
	HasMore       bool   `json:"has_more"`
}

func EncodeCursor(data Cursor) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func DecodeCursor(data string) (*Cursor, error) {
	b, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}

	var cursor Cursor
	if err := json.Unmarshal(b, &cursor); err != nil {
		return nil, err
	}

	return &cursor, nil
}

// Apply constrains a keyset-ordered query. Callers order by
// (timeColumn desc, id desc); the cursor filter matches that order.
// One extra row is fetched so the caller can detect a next page.
func Apply(stmt *gorm.DB, page Pagination, timeColumn string) (*gorm.DB, int, error) {
	size := page.PageSize
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}

	if page.PageToken != "" {
		cursor, err := DecodeCursor(page.PageToken)
		if err != nil {
			return nil, 0, err
		}
		if cursor.CreatedAt != "" && cursor.ID != "" {
			stmt = stmt.Where(
				"("+timeColumn+" < ?) OR ("+timeColumn+" = ? AND id < ?)",
				cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
			)
		}
	}

	return stmt.Limit(size + 1), size, nil
}

// BuildPageInfo trims the probe row fetched by Apply and encodes the
// cursor of the last visible row.
func BuildPageInfo[T any](data []*T, size int, extractCursor func(*T) Cursor) ([]*T, PageInfo) {
	if len(data) == 0 {
		return data, PageInfo{}
	}

	info := PageInfo{}
	if len(data) > size {
		info.HasMore = true
		data = data[:size]
	}

	token, err := EncodeCursor(extractCursor(data[len(data)-1]))
	if err == nil && info.HasMore {
		info.NextPageToken = token
	}

	return data, info
}
