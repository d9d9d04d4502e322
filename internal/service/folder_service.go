package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"storage-manager/internal/logger"
	"storage-manager/internal/model"
	"storage-manager/internal/ports"
	"storage-manager/internal/util"
)

const maxFolderName = 255

type FolderService struct {
	tx      ports.Transactor
	folders ports.FolderRepository
	now     func() time.Time
}

func NewFolderService(tx ports.Transactor, folders ports.FolderRepository) *FolderService {
	return &FolderService{tx: tx, folders: folders, now: stampNow}
}

// CreateFolder : создаёт папку; имя уникально среди активных соседей владельца
func (s *FolderService) CreateFolder(ctx context.Context, ownerID, name string, parentID *string) (*model.Folder, error) {
	name, err := normalizeFolderName(name)
	if err != nil {
		return nil, err
	}

	exec, rollback, commit, err := s.tx.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[FolderService] не удалось начать транзакцию", err)
	}
	defer rollback()

	if parentID != nil {
		if _, err := s.activeFolder(ctx, exec, ownerID, *parentID); err != nil {
			return nil, err
		}
	}

	if err := s.ensureUniqueName(ctx, exec, ownerID, parentID, name, ""); err != nil {
		return nil, err
	}

	now := s.now()
	folder := &model.Folder{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   ownerID,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.folders.Create(ctx, exec, folder); err != nil {
		return nil, wrapLookup("[FolderService] не удалось сохранить папку", err)
	}

	if err := commit(); err != nil {
		return nil, util.LogError("[FolderService] не удалось закоммитить транзакцию", err)
	}

	logger.Log.Info().Str("folder", folder.ID).Str("owner", ownerID).Msg("[FolderService] папка создана")
	return folder, nil
}

func (s *FolderService) GetFolder(ctx context.Context, ownerID, folderID string) (*model.Folder, error) {
	return s.activeFolder(ctx, s.tx.Executor(), ownerID, folderID)
}

// ListChildren : активные подпапки; parentID == nil означает корень
func (s *FolderService) ListChildren(ctx context.Context, ownerID string, parentID *string) ([]*model.Folder, error) {
	exec := s.tx.Executor()
	if parentID != nil {
		if _, err := s.activeFolder(ctx, exec, ownerID, *parentID); err != nil {
			return nil, err
		}
	}
	folders, err := s.folders.ListChildren(ctx, exec, ownerID, parentID, false)
	if err != nil {
		return nil, util.LogError("[FolderService] не удалось получить подпапки", err)
	}
	return folders, nil
}

// ListAll : все активные папки владельца, для построения дерева
func (s *FolderService) ListAll(ctx context.Context, ownerID string) ([]*model.Folder, error) {
	folders, err := s.folders.ListAll(ctx, s.tx.Executor(), ownerID)
	if err != nil {
		return nil, util.LogError("[FolderService] не удалось получить папки", err)
	}
	return folders, nil
}

func (s *FolderService) RenameFolder(ctx context.Context, ownerID, folderID, name string) (*model.Folder, error) {
	name, err := normalizeFolderName(name)
	if err != nil {
		return nil, err
	}

	exec, rollback, commit, err := s.tx.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[FolderService] не удалось начать транзакцию", err)
	}
	defer rollback()

	folder, err := s.activeFolder(ctx, exec, ownerID, folderID)
	if err != nil {
		return nil, err
	}
	if folder.Name == name {
		return folder, nil
	}

	if err := s.ensureUniqueName(ctx, exec, ownerID, folder.ParentID, name, folder.ID); err != nil {
		return nil, err
	}
	if err := s.folders.Rename(ctx, exec, folder.ID, ownerID, name); err != nil {
		return nil, wrapLookup("[FolderService] не удалось переименовать папку", err)
	}
	if err := commit(); err != nil {
		return nil, util.LogError("[FolderService] не удалось закоммитить транзакцию", err)
	}

	folder.Name = name
	return folder, nil
}

// MoveFolder : перенос в другую папку владельца либо в корень; перенос внутрь себя или потомка запрещён
func (s *FolderService) MoveFolder(ctx context.Context, ownerID, folderID string, parentID *string) (*model.Folder, error) {
	exec, rollback, commit, err := s.tx.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[FolderService] не удалось начать транзакцию", err)
	}
	defer rollback()

	folder, err := s.activeFolder(ctx, exec, ownerID, folderID)
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		if err := checkTargetFolder(ctx, s.folders, exec, ownerID, *parentID); err != nil {
			return nil, err
		}
		if err := s.ensureNotDescendant(ctx, exec, ownerID, folder.ID, *parentID); err != nil {
			return nil, err
		}
	}

	if err := s.ensureUniqueName(ctx, exec, ownerID, parentID, folder.Name, folder.ID); err != nil {
		return nil, err
	}
	if err := s.folders.UpdateParent(ctx, exec, folder.ID, ownerID, parentID); err != nil {
		return nil, wrapLookup("[FolderService] не удалось переместить папку", err)
	}
	if err := commit(); err != nil {
		return nil, util.LogError("[FolderService] не удалось закоммитить транзакцию", err)
	}

	folder.ParentID = parentID
	return folder, nil
}

// FolderPath : "a/b/c" от корня до папки
func (s *FolderService) FolderPath(ctx context.Context, ownerID, folderID string) (string, error) {
	chain, err := s.ancestors(ctx, s.tx.Executor(), ownerID, folderID)
	if err != nil {
		return "", err
	}
	names := make([]string, len(chain))
	for i, f := range chain {
		names[len(chain)-1-i] = f.Name
	}
	return strings.Join(names, "/"), nil
}

func (s *FolderService) activeFolder(ctx context.Context, exec sqlx.ExtContext, ownerID, folderID string) (*model.Folder, error) {
	folder, err := s.folders.GetByID(ctx, exec, folderID, ownerID)
	if err != nil {
		return nil, wrapLookup("[FolderService] папка не найдена", err)
	}
	if folder.IsDeleted {
		return nil, fmt.Errorf("[FolderService] папка в корзине: %w", model.ErrNotFound)
	}
	return folder, nil
}

func (s *FolderService) ensureUniqueName(ctx context.Context, exec sqlx.ExtContext, ownerID string, parentID *string, name, excludeID string) error {
	exists, err := s.folders.ExistsActiveSibling(ctx, exec, ownerID, parentID, name, excludeID)
	if err != nil {
		return util.LogError("[FolderService] ошибка проверки имени", err)
	}
	if exists {
		return fmt.Errorf("%w: %q", model.ErrDuplicateSiblingName, name)
	}
	return nil
}

// ensureNotDescendant : идём от цели вверх; встретили переносимую папку, значит цикл
func (s *FolderService) ensureNotDescendant(ctx context.Context, exec sqlx.ExtContext, ownerID, folderID, targetID string) error {
	chain, err := s.ancestors(ctx, exec, ownerID, targetID)
	if err != nil {
		return err
	}
	for _, f := range chain {
		if f.ID == folderID {
			return fmt.Errorf("папку нельзя перенести в саму себя или во вложенную: %w", model.ErrForbiddenTarget)
		}
	}
	return nil
}

// ancestors : папка и все её предки, начиная с самой папки
func (s *FolderService) ancestors(ctx context.Context, exec sqlx.ExtContext, ownerID, folderID string) ([]*model.Folder, error) {
	var chain []*model.Folder
	seen := make(map[string]struct{})
	id := folderID
	for {
		if _, ok := seen[id]; ok {
			return nil, util.LogError("[FolderService] обнаружен цикл в дереве папок", fmt.Errorf("папка %s", id))
		}
		seen[id] = struct{}{}

		folder, err := s.folders.GetByID(ctx, exec, id, ownerID)
		if err != nil {
			return nil, wrapLookup("[FolderService] папка не найдена", err)
		}
		chain = append(chain, folder)
		if folder.ParentID == nil {
			return chain, nil
		}
		id = *folder.ParentID
	}
}

func normalizeFolderName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: имя папки не может быть пустым", model.ErrInvalidArgument)
	}
	if utf8.RuneCountInString(name) > maxFolderName {
		return "", fmt.Errorf("%w: имя папки длиннее %d символов", model.ErrInvalidArgument, maxFolderName)
	}
	if strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: имя папки содержит разделитель пути", model.ErrInvalidArgument)
	}
	return name, nil
}
