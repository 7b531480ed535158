package models

import "strings"

type ItemType string

const (
	ItemDirectory ItemType = "directory"
	ItemWorkbook  ItemType = "workbook"
)

// ParseItemType accepts "directory" or "workbook", case-insensitively.
func ParseItemType(s string) (ItemType, bool) {
	switch ItemType(strings.ToLower(strings.TrimSpace(s))) {
	case ItemDirectory:
		return ItemDirectory, true
	case ItemWorkbook:
		return ItemWorkbook, true
	}
	return "", false
}

// Item is one entry of a folder listing. Exactly one of Directory or
// Workbook is set, matching Type.
type Item struct {
	Type      ItemType   `json:"type"`
	Directory *Directory `json:"directory,omitempty"`
	Workbook  *Workbook  `json:"workbook,omitempty"`
}

func DirectoryItem(d *Directory) Item { return Item{Type: ItemDirectory, Directory: d} }
func WorkbookItem(w *Workbook) Item   { return Item{Type: ItemWorkbook, Workbook: w} }

func (i Item) ID() string {
	switch i.Type {
	case ItemDirectory:
		if i.Directory != nil {
			return i.Directory.ID
		}
	case ItemWorkbook:
		if i.Workbook != nil {
			return i.Workbook.ID
		}
	}
	return ""
}

func (i Item) Name() string {
	switch i.Type {
	case ItemDirectory:
		if i.Directory != nil {
			return i.Directory.Name
		}
	case ItemWorkbook:
		if i.Workbook != nil {
			return i.Workbook.Name
		}
	}
	return ""
}

func (i Item) ParentID() *string {
	switch i.Type {
	case ItemDirectory:
		if i.Directory != nil {
			return i.Directory.ParentID
		}
	case ItemWorkbook:
		if i.Workbook != nil {
			return i.Workbook.ParentID
		}
	}
	return nil
}

// Breadcrumb is one step of a root-to-node path
type Breadcrumb struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
