package hasher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"

	"storage-manager/internal/model"
	"storage-manager/internal/ports"
)

const DefaultChunkSize = 4096

// Hasher : потоковый SHA-256 блоками фиксированного размера
type Hasher struct {
	chunkSize int
}

func New(chunkSize int) *Hasher {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Hasher{chunkSize: chunkSize}
}

// Sum : hex-дайджест в нижнем регистре, не зависит от размера блока
func (h *Hasher) Sum(r io.Reader) (string, error) {
	digest := sha256.New()
	buf := make([]byte, h.chunkSize)
	if _, err := io.CopyBuffer(struct{ io.Writer }{digest}, struct{ io.Reader }{r}, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}

// HashContent : открывает байты файла в хранилище и считает хеш
func (h *Hasher) HashContent(ctx context.Context, store ports.ContentStore, ref string) (string, error) {
	rc, err := store.Open(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrUnreadableContent, err)
	}
	defer rc.Close()

	sum, err := h.Sum(rc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrUnreadableContent, err)
	}
	return sum, nil
}

type groupKey struct {
	owner string
	hash  string
}

// GroupDuplicates : группирует активные файлы по (владелец, хеш).
// Оригинал: самый ранний по created_at (при равенстве меньший id), остальные считаются дубликатами.
func GroupDuplicates(files []*model.File) *model.DuplicateReport {
	buckets := make(map[groupKey][]*model.File)
	for _, f := range files {
		if f.IsDeleted || !f.HasHash() {
			continue
		}
		k := groupKey{owner: f.OwnerID, hash: *f.ContentHash}
		buckets[k] = append(buckets[k], f)
	}

	report := &model.DuplicateReport{Groups: []model.DuplicateGroup{}}
	for k, members := range buckets {
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool {
			if !members[i].CreatedAt.Equal(members[j].CreatedAt) {
				return members[i].CreatedAt.Before(members[j].CreatedAt)
			}
			return members[i].ID < members[j].ID
		})

		group := model.DuplicateGroup{
			OwnerID:     k.owner,
			ContentHash: k.hash,
			Original:    members[0],
			Duplicates:  members[1:],
		}
		for _, d := range group.Duplicates {
			group.WastedBytes += d.SizeBytes
		}
		report.TotalWasted += group.WastedBytes
		report.Groups = append(report.Groups, group)
	}

	sort.Slice(report.Groups, func(i, j int) bool {
		if report.Groups[i].OwnerID != report.Groups[j].OwnerID {
			return report.Groups[i].OwnerID < report.Groups[j].OwnerID
		}
		return report.Groups[i].ContentHash < report.Groups[j].ContentHash
	})
	return report
}
