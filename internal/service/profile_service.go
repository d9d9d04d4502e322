package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"storage-manager/internal/logger"
	"storage-manager/internal/model"
	"storage-manager/internal/ports"
	"storage-manager/internal/util"
)

const (
	maxBioLength      = 500
	maxPhoneLength    = 20
	maxLocationLength = 100
)

// ProfileService : локальные пользователи и их профили (аватар, био, контакты)
type ProfileService struct {
	tx       ports.Transactor
	users    ports.UserRepository
	profiles ports.ProfileRepository
	resolver ports.LocationResolver
	now      func() time.Time
}

func NewProfileService(
	tx ports.Transactor,
	users ports.UserRepository,
	profiles ports.ProfileRepository,
	resolver ports.LocationResolver,
) *ProfileService {
	return &ProfileService{
		tx:       tx,
		users:    users,
		profiles: profiles,
		resolver: resolver,
		now:      stampNow,
	}
}

// RegisterUser : пользователь и пустой профиль создаются в одной транзакции
func (s *ProfileService) RegisterUser(ctx context.Context, user *model.User) (*model.UserProfile, error) {
	if strings.TrimSpace(user.Username) == "" {
		return nil, fmt.Errorf("%w: пустое имя пользователя", model.ErrInvalidArgument)
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := s.now()
	user.CreatedAt = now

	exec, rollback, commit, err := s.tx.BeginTX(ctx)
	if err != nil {
		return nil, util.LogError("[ProfileService] не удалось начать транзакцию", err)
	}
	defer rollback()

	if err := s.users.Create(ctx, exec, user); err != nil {
		return nil, err
	}
	profile := &model.UserProfile{UserID: user.ID, CreatedAt: now, UpdatedAt: now}
	if err := s.profiles.Create(ctx, exec, profile); err != nil {
		return nil, util.LogError("[ProfileService] не удалось создать профиль", err)
	}
	if err := commit(); err != nil {
		return nil, util.LogError("[ProfileService] не удалось закоммитить транзакцию", err)
	}

	logger.Log.Info().Str("user", user.ID).Msg("[ProfileService] пользователь зарегистрирован")
	return profile, nil
}

// EnsureUser : регистрирует пользователя из токена, если его ещё нет локально
func (s *ProfileService) EnsureUser(ctx context.Context, userID, username string) error {
	exists, err := s.users.Exists(ctx, s.tx.Executor(), userID)
	if err != nil {
		return util.LogError("[ProfileService] ошибка проверки пользователя", err)
	}
	if exists {
		return nil
	}
	if strings.TrimSpace(username) == "" {
		username = userID
	}

	_, err = s.RegisterUser(ctx, &model.User{ID: userID, Username: username, IsActive: true})
	// параллельный первый запрос того же пользователя
	if errors.Is(err, model.ErrIntegrityViolation) {
		return nil
	}
	return err
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	profile, err := s.profiles.Get(ctx, s.tx.Executor(), userID)
	if err != nil {
		return nil, wrapLookup("[ProfileService] профиль не найден", err)
	}
	return profile, nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, upd model.ProfileUpdate) (*model.UserProfile, error) {
	exec := s.tx.Executor()
	profile, err := s.profiles.Get(ctx, exec, userID)
	if err != nil {
		return nil, wrapLookup("[ProfileService] профиль не найден", err)
	}

	if err := applyField(&profile.Bio, upd.Bio, "bio", maxBioLength); err != nil {
		return nil, err
	}
	if err := applyField(&profile.Phone, upd.Phone, "phone", maxPhoneLength); err != nil {
		return nil, err
	}
	if err := applyField(&profile.Location, upd.Location, "location", maxLocationLength); err != nil {
		return nil, err
	}
	profile.UpdatedAt = s.now()

	if err := s.profiles.Update(ctx, exec, profile); err != nil {
		return nil, wrapLookup("[ProfileService] не удалось обновить профиль", err)
	}
	return profile, nil
}

// UpdateAvatar : аватар пишется в локацию по умолчанию, старый удаляется после обновления записи
func (s *ProfileService) UpdateAvatar(ctx context.Context, userID, filename string, content io.Reader) (*model.UserProfile, error) {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return nil, fmt.Errorf("%w: пустое имя файла аватара", model.ErrInvalidArgument)
	}
	if !strings.HasPrefix(util.ContentType(name), "image/") {
		return nil, fmt.Errorf("%w: аватар должен быть изображением", model.ErrInvalidArgument)
	}

	exec := s.tx.Executor()
	profile, err := s.profiles.Get(ctx, exec, userID)
	if err != nil {
		return nil, wrapLookup("[ProfileService] профиль не найден", err)
	}

	store, _, err := s.resolver.Resolve("")
	if err != nil {
		return nil, util.LogError("[ProfileService] локация по умолчанию недоступна", err)
	}
	ref := fmt.Sprintf("avatars/user_%s/%s_%s", userID, uuid.NewString()[:8], name)
	if _, err := store.Write(ctx, ref, content); err != nil {
		return nil, util.LogError("[ProfileService] не удалось сохранить аватар", err)
	}

	previous := profile.AvatarRef
	profile.AvatarRef = ref
	profile.UpdatedAt = s.now()
	if err := s.profiles.Update(ctx, exec, profile); err != nil {
		if derr := store.Delete(ctx, ref); derr != nil {
			logger.Log.Warn().Err(derr).Str("ref", ref).Msg("[ProfileService] не удалось удалить несохранённый аватар")
		}
		return nil, wrapLookup("[ProfileService] не удалось обновить профиль", err)
	}

	if previous != "" {
		if err := store.Delete(ctx, previous); err != nil {
			logger.Log.Warn().Err(err).Str("ref", previous).Msg("[ProfileService] не удалось удалить старый аватар")
		}
	}
	return profile, nil
}

// OpenAvatar : байты текущего аватара пользователя
func (s *ProfileService) OpenAvatar(ctx context.Context, userID string) (string, io.ReadCloser, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	if profile.AvatarRef == "" {
		return "", nil, fmt.Errorf("[ProfileService] аватар не задан: %w", model.ErrNotFound)
	}
	store, _, err := s.resolver.Resolve("")
	if err != nil {
		return "", nil, util.LogError("[ProfileService] локация по умолчанию недоступна", err)
	}
	rc, err := store.Open(ctx, profile.AvatarRef)
	if err != nil {
		if errors.Is(err, model.ErrContentNotFound) {
			return "", nil, fmt.Errorf("[ProfileService] файл аватара отсутствует: %w", model.ErrNotFound)
		}
		return "", nil, util.LogError("[ProfileService] не удалось открыть аватар", err)
	}
	return util.ContentType(profile.AvatarRef), rc, nil
}

func applyField(dst *string, value *string, field string, limit int) error {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if len([]rune(v)) > limit {
		return fmt.Errorf("%w: %s длиннее %d символов", model.ErrInvalidArgument, field, limit)
	}
	*dst = v
	return nil
}
