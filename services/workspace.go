package services

import (
	"context"
	"errors"
	"sort"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/andrewpaige1/workbook-api/apperr"
	"github.com/andrewpaige1/workbook-api/auth"
	"github.com/andrewpaige1/workbook-api/cache"
	"github.com/andrewpaige1/workbook-api/logger"
	"github.com/andrewpaige1/workbook-api/models"
)

type WorkspaceService struct {
	db      *gorm.DB
	users   *UserService
	listing cache.Listing
	locale  language.Tag
	log     *logger.Logger
}

type CreateItemRequest struct {
	Type        models.ItemType
	Name        string
	Description string
	ParentID    *string
}

type UpdateItemRequest struct {
	Name        string
	Description string
}

type DirectoryView struct {
	Directory   *models.Directory   `json:"directory"`
	Breadcrumbs []models.Breadcrumb `json:"breadcrumbs"`
	Children    []models.Item       `json:"children"`
}

type WorkbookView struct {
	Workbook    *models.Workbook    `json:"workbook"`
	Breadcrumbs []models.Breadcrumb `json:"breadcrumbs"`
}

// Create inserts a directory or workbook under req.ParentID (nil = root).
func (s *WorkspaceService) Create(ctx context.Context, identity auth.Identity, req CreateItemRequest) (*models.Item, error) {
	user, err := s.users.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	fields, err := normalizeItem(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	parentID := normalizeParent(req.ParentID)
	if parentID != nil {
		if _, err := s.ownedDirectory(ctx, s.conn(ctx), user.ID, *parentID); err != nil {
			return nil, err
		}
	}

	taken, err := s.checkDuplicateName(ctx, user.ID, parentID, fields.Name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.DuplicateName(fields.Name)
	}

	var item models.Item
	switch req.Type {
	case models.ItemDirectory:
		dir := &models.Directory{Name: fields.Name, UserID: user.ID, ParentID: parentID}
		if err := s.conn(ctx).Create(dir).Error; err != nil {
			s.log.Warn("failed to create directory", "name", fields.Name, "error", err)
			return nil, storeErr(err, "directory")
		}
		item = models.DirectoryItem(dir)
	case models.ItemWorkbook:
		wb := &models.Workbook{Name: fields.Name, Description: fields.Description, UserID: user.ID, ParentID: parentID}
		if err := s.conn(ctx).Create(wb).Error; err != nil {
			s.log.Warn("failed to create workbook", "name", fields.Name, "error", err)
			return nil, storeErr(err, "workbook")
		}
		item = models.WorkbookItem(wb)
	default:
		return nil, apperr.Validation("type must be directory or workbook")
	}

	s.listing.Invalidate(ctx, cache.KeyFor(user.ID, parentID))
	s.log.Info("item created", "type", item.Type, "id", item.ID(), "parent_id", parentID)
	return &item, nil
}

// Update renames an item (and replaces a workbook's description) in place.
func (s *WorkspaceService) Update(ctx context.Context, identity auth.Identity, itemType models.ItemType, id string, req UpdateItemRequest) (*models.Item, error) {
	user, err := s.users.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	fields, err := normalizeItem(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	item, err := s.ownedItem(ctx, user.ID, itemType, id)
	if err != nil {
		return nil, err
	}

	parentID := item.ParentID()
	taken, err := s.checkDuplicateName(ctx, user.ID, parentID, fields.Name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.DuplicateName(fields.Name)
	}

	switch item.Type {
	case models.ItemDirectory:
		if err := s.conn(ctx).Model(item.Directory).Update("name", fields.Name).Error; err != nil {
			return nil, storeErr(err, "directory")
		}
	case models.ItemWorkbook:
		if err := s.conn(ctx).Model(item.Workbook).Updates(map[string]interface{}{
			"name":        fields.Name,
			"description": fields.Description,
		}).Error; err != nil {
			return nil, storeErr(err, "workbook")
		}
		item.Workbook.Description = fields.Description
	}
	if item.Directory != nil {
		item.Directory.Name = fields.Name
	}
	if item.Workbook != nil {
		item.Workbook.Name = fields.Name
	}

	s.listing.Invalidate(ctx, cache.KeyFor(user.ID, parentID))
	s.log.Info("item updated", "type", item.Type, "id", id)
	return item, nil
}

// Move re-parents an item. Moving a directory into itself or into any of its
// descendants is rejected.
func (s *WorkspaceService) Move(ctx context.Context, identity auth.Identity, itemType models.ItemType, id string, newParentID *string) (*models.Item, error) {
	user, err := s.users.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	newParentID = normalizeParent(newParentID)
	if itemType == models.ItemDirectory && newParentID != nil && *newParentID == id {
		return nil, apperr.SelfReference()
	}

	item, err := s.ownedItem(ctx, user.ID, itemType, id)
	if err != nil {
		return nil, err
	}

	if newParentID != nil {
		dest, err := s.ownedDirectory(ctx, s.conn(ctx), user.ID, *newParentID)
		if err != nil {
			return nil, err
		}
		if item.Type == models.ItemDirectory {
			crumbs := s.ancestry(ctx, s.conn(ctx), user.ID, dest.ParentID)
			for _, c := range crumbs {
				if c.ID == id {
					return nil, apperr.SelfReference()
				}
			}
		}
	}

	taken, err := s.checkDuplicateName(ctx, user.ID, newParentID, item.Name(), id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.DuplicateName(item.Name())
	}

	oldParentID := item.ParentID()
	var model interface{}
	if item.Type == models.ItemDirectory {
		model = item.Directory
	} else {
		model = item.Workbook
	}
	if err := s.conn(ctx).Model(model).Update("parent_id", parentValue(newParentID)).Error; err != nil {
		return nil, storeErr(err, string(item.Type))
	}
	if item.Directory != nil {
		item.Directory.ParentID = newParentID
	}
	if item.Workbook != nil {
		item.Workbook.ParentID = newParentID
	}

	s.listing.Invalidate(ctx, cache.KeyFor(user.ID, oldParentID), cache.KeyFor(user.ID, newParentID))
	s.log.Info("item moved", "type", item.Type, "id", id, "from", oldParentID, "to", newParentID)
	return item, nil
}

// Delete removes an item. Directories are deleted together with everything
// beneath them; workbooks together with their cards and study history.
func (s *WorkspaceService) Delete(ctx context.Context, identity auth.Identity, itemType models.ItemType, id string) error {
	user, err := s.users.Resolve(ctx, identity)
	if err != nil {
		return err
	}
	item, err := s.ownedItem(ctx, user.ID, itemType, id)
	if err != nil {
		return err
	}

	err = s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if item.Type == models.ItemWorkbook {
			return deleteWorkbooks(tx, []string{id})
		}
		return s.deleteDirectoryTree(tx, user.ID, id)
	})
	if err != nil {
		s.log.Error("failed to delete item", "type", item.Type, "id", id, "error", err)
		return storeErr(err, string(item.Type))
	}

	if item.Type == models.ItemDirectory {
		s.listing.InvalidateOwner(ctx, user.ID)
	} else {
		s.listing.Invalidate(ctx, cache.KeyFor(user.ID, item.ParentID()))
	}
	s.log.Info("item deleted", "type", item.Type, "id", id)
	return nil
}

func (s *WorkspaceService) deleteDirectoryTree(tx *gorm.DB, userID, rootID string) error {
	dirIDs := []string{rootID}
	frontier := []string{rootID}
	for len(frontier) > 0 {
		var children []string
		if err := tx.Model(&models.Directory{}).
			Where("user_id = ? AND parent_id IN ?", userID, frontier).
			Pluck("id", &children).Error; err != nil {
			return err
		}
		dirIDs = append(dirIDs, children...)
		frontier = children
	}

	var workbookIDs []string
	if err := tx.Model(&models.Workbook{}).
		Where("user_id = ? AND parent_id IN ?", userID, dirIDs).
		Pluck("id", &workbookIDs).Error; err != nil {
		return err
	}
	if err := deleteWorkbooks(tx, workbookIDs); err != nil {
		return err
	}
	return tx.Where("id IN ?", dirIDs).Delete(&models.Directory{}).Error
}

func deleteWorkbooks(tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	sessions := tx.Model(&models.StudySession{}).Select("id").Where("workbook_id IN ?", ids)
	if err := tx.Where("session_id IN (?)", sessions).Delete(&models.StudyRecord{}).Error; err != nil {
		return err
	}
	if err := tx.Where("workbook_id IN ?", ids).Delete(&models.StudySession{}).Error; err != nil {
		return err
	}
	if err := tx.Where("workbook_id IN ?", ids).Delete(&models.Card{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Workbook{}).Error
}

// ListChildren returns the directories and workbooks directly under parentID,
// merged and sorted by name for the configured locale.
func (s *WorkspaceService) ListChildren(ctx context.Context, identity auth.Identity, parentID *string) ([]models.Item, error) {
	user, err := s.users.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	parentID = normalizeParent(parentID)
	return s.listChildren(ctx, user.ID, parentID)
}

func (s *WorkspaceService) listChildren(ctx context.Context, userID string, parentID *string) ([]models.Item, error) {
	key := cache.KeyFor(userID, parentID)
	if items, ok := s.listing.Get(ctx, key); ok {
		return items, nil
	}

	if parentID != nil {
		if _, err := s.ownedDirectory(ctx, s.conn(ctx), userID, *parentID); err != nil {
			return nil, err
		}
	}

	var dirs []models.Directory
	if err := siblings(s.conn(ctx).Model(&models.Directory{}), userID, parentID).Find(&dirs).Error; err != nil {
		return nil, storeErr(err, "directory")
	}
	var wbs []models.Workbook
	if err := siblings(s.conn(ctx).Model(&models.Workbook{}), userID, parentID).Find(&wbs).Error; err != nil {
		return nil, storeErr(err, "workbook")
	}

	items := make([]models.Item, 0, len(dirs)+len(wbs))
	for i := range dirs {
		items = append(items, models.DirectoryItem(&dirs[i]))
	}
	for i := range wbs {
		items = append(items, models.WorkbookItem(&wbs[i]))
	}
	s.sortItems(items)

	s.listing.Set(ctx, key, items)
	return items, nil
}

// DirectoryChoices lists the directories directly under parentID, for picking
// a move destination.
func (s *WorkspaceService) DirectoryChoices(ctx context.Context, identity auth.Identity, parentID *string) ([]models.Directory, error) {
	user, err := s.users.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	parentID = normalizeParent(parentID)
	var dirs []models.Directory
	if err := siblings(s.conn(ctx).Model(&models.Directory{}), user.ID, parentID).Find(&dirs).Error; err != nil {
		return nil, storeErr(err, "directory")
	}
	c := collate.New(s.locale)
	sort.SliceStable(dirs, func(i, j int) bool {
		return c.CompareString(dirs[i].Name, dirs[j].Name) < 0
	})
	return dirs, nil
}

// Breadcrumbs returns the root-to-node path ending with the node itself.
func (s *WorkspaceService) Breadcrumbs(ctx context.Context, identity auth.Identity, itemType models.ItemType, id string) ([]models.Breadcrumb, error) {
	user, err := s.users.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	item, err := s.ownedItem(ctx, user.ID, itemType, id)
	if err != nil {
		return nil, err
	}
	return s.breadcrumbsFor(ctx, user.ID, item), nil
}

func (s *WorkspaceService) breadcrumbsFor(ctx context.Context, userID string, item *models.Item) []models.Breadcrumb {
	crumbs := s.ancestry(ctx, s.conn(ctx), userID, item.ParentID())
	return append(crumbs, models.Breadcrumb{ID: item.ID(), Name: item.Name()})
}

// ancestry walks parent links upward from parentID and returns the chain
// root first. The walk stops at a nil parent, at a directory that cannot be
// resolved, or when a directory repeats.
func (s *WorkspaceService) ancestry(ctx context.Context, db *gorm.DB, userID string, parentID *string) []models.Breadcrumb {
	var chain []models.Breadcrumb
	seen := make(map[string]bool)
	for parentID != nil && !seen[*parentID] {
		seen[*parentID] = true
		var dir models.Directory
		err := db.Select("id", "name", "parent_id").
			Where("id = ? AND user_id = ?", *parentID, userID).
			First(&dir).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				s.log.Warn("breadcrumb walk stopped", "directory_id", *parentID, "error", err)
			}
			break
		}
		chain = append(chain, models.Breadcrumb{ID: dir.ID, Name: dir.Name})
		parentID = dir.ParentID
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

func (s *WorkspaceService) GetDirectory(ctx context.Context, identity auth.Identity, id string) (*DirectoryView, error) {
	user, err := s.users.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	dir, err := s.ownedDirectory(ctx, s.conn(ctx), user.ID, id)
	if err != nil {
		return nil, err
	}
	children, err := s.listChildren(ctx, user.ID, &dir.ID)
	if err != nil {
		return nil, err
	}
	item := models.DirectoryItem(dir)
	return &DirectoryView{
		Directory:   dir,
		Breadcrumbs: s.breadcrumbsFor(ctx, user.ID, &item),
		Children:    children,
	}, nil
}

func (s *WorkspaceService) GetWorkbook(ctx context.Context, identity auth.Identity, id string) (*WorkbookView, error) {
	user, err := s.users.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	var wb models.Workbook
	err = s.conn(ctx).
		Preload("Cards", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Where("id = ? AND user_id = ?", id, user.ID).
		First(&wb).Error
	if err != nil {
		return nil, storeErr(err, "workbook")
	}
	if wb.Cards == nil {
		wb.Cards = []models.Card{}
	}
	item := models.WorkbookItem(&wb)
	return &WorkbookView{
		Workbook:    &wb,
		Breadcrumbs: s.breadcrumbsFor(ctx, user.ID, &item),
	}, nil
}

// ownedWorkbook loads a workbook owned by userID.
func (s *WorkspaceService) ownedWorkbook(ctx context.Context, db *gorm.DB, userID, id string) (*models.Workbook, error) {
	var wb models.Workbook
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&wb).Error; err != nil {
		return nil, storeErr(err, "workbook")
	}
	return &wb, nil
}

func (s *WorkspaceService) ownedDirectory(ctx context.Context, db *gorm.DB, userID, id string) (*models.Directory, error) {
	var dir models.Directory
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&dir).Error; err != nil {
		return nil, storeErr(err, "directory")
	}
	return &dir, nil
}

func (s *WorkspaceService) ownedItem(ctx context.Context, userID string, itemType models.ItemType, id string) (*models.Item, error) {
	switch itemType {
	case models.ItemDirectory:
		dir, err := s.ownedDirectory(ctx, s.conn(ctx), userID, id)
		if err != nil {
			return nil, err
		}
		item := models.DirectoryItem(dir)
		return &item, nil
	case models.ItemWorkbook:
		wb, err := s.ownedWorkbook(ctx, s.conn(ctx), userID, id)
		if err != nil {
			return nil, err
		}
		item := models.WorkbookItem(wb)
		return &item, nil
	default:
		return nil, apperr.Validation("type must be directory or workbook")
	}
}

// checkDuplicateName reports whether a directory or workbook named name
// already sits at (userID, parentID). The two lookups run concurrently.
// excludeID leaves the item being renamed or moved out of the scan.
func (s *WorkspaceService) checkDuplicateName(ctx context.Context, userID string, parentID *string, name, excludeID string) (bool, error) {
	var dirCount, wbCount int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q := siblings(s.db.WithContext(gctx).Model(&models.Directory{}), userID, parentID).Where("name = ?", name)
		if excludeID != "" {
			q = q.Where("id <> ?", excludeID)
		}
		return q.Count(&dirCount).Error
	})
	g.Go(func() error {
		q := siblings(s.db.WithContext(gctx).Model(&models.Workbook{}), userID, parentID).Where("name = ?", name)
		if excludeID != "" {
			q = q.Where("id <> ?", excludeID)
		}
		return q.Count(&wbCount).Error
	})
	if err := g.Wait(); err != nil {
		s.log.Error("duplicate name check failed", "name", name, "error", err)
		return false, apperr.Persistence(err)
	}
	return dirCount+wbCount > 0, nil
}

func (s *WorkspaceService) sortItems(items []models.Item) {
	c := collate.New(s.locale)
	sort.SliceStable(items, func(i, j int) bool {
		return c.CompareString(items[i].Name(), items[j].Name()) < 0
	})
}

// siblings scopes q to the rows of userID directly under parentID.
func siblings(q *gorm.DB, userID string, parentID *string) *gorm.DB {
	q = q.Where("user_id = ?", userID)
	if parentID == nil {
		return q.Where("parent_id IS NULL")
	}
	return q.Where("parent_id = ?", *parentID)
}

func normalizeParent(parentID *string) *string {
	if parentID == nil || *parentID == "" {
		return nil
	}
	return parentID
}

func parentValue(parentID *string) interface{} {
	if parentID == nil {
		return gorm.Expr("NULL")
	}
	return *parentID
}
