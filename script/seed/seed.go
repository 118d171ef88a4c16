package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"gorm.io/gorm"

	"github.com/yi-nology/blender_board/biz/dal/db"
	"github.com/yi-nology/blender_board/biz/dal/model"
	"github.com/yi-nology/blender_board/biz/service"
	"github.com/yi-nology/blender_board/pkg/storage"
)

// seedPrefix marks stored names owned by the seeder so a rerun can replace them.
const seedPrefix = "seed-"

type remoteAsset struct {
	name string
	url  string
}

var modelSources = []remoteAsset{
	{"Duck", "https://raw.githubusercontent.com/KhronosGroup/glTF-Sample-Assets/main/Models/Duck/glTF-Binary/Duck.glb"},
	{"BoxTextured", "https://raw.githubusercontent.com/KhronosGroup/glTF-Sample-Assets/main/Models/BoxTextured/glTF-Binary/BoxTextured.glb"},
	{"Fox", "https://raw.githubusercontent.com/KhronosGroup/glTF-Sample-Assets/main/Models/Fox/glTF-Binary/Fox.glb"},
	{"CesiumMan", "https://raw.githubusercontent.com/KhronosGroup/glTF-Sample-Assets/main/Models/CesiumMan/glTF-Binary/CesiumMan.glb"},
}

var imageSources = []remoteAsset{
	{"ForestLake", "https://picsum.photos/id/1015/1280/860.jpg"},
	{"Mountains", "https://picsum.photos/id/1002/1280/860.jpg"},
	{"Field", "https://picsum.photos/id/1039/1280/860.jpg"},
	{"River", "https://picsum.photos/id/1043/1280/860.jpg"},
	{"Sky", "https://picsum.photos/id/1056/1280/860.jpg"},
	{"Road", "https://picsum.photos/id/1067/1280/860.jpg"},
	{"Clouds", "https://picsum.photos/id/1074/1280/860.jpg"},
	{"Sunset", "https://picsum.photos/id/1084/1280/860.jpg"},
}

var authors = []string{"Aoi", "Ren", "Mika", "Sora", "Kenta", "Hana"}

// Fetcher returns the content behind url.
type Fetcher func(ctx context.Context, url string) ([]byte, error)

// Stats are the table totals after a seed run.
type Stats struct {
	Models int64
	Images int64
	Links  int64
}

// Seeder replaces previously seeded media with a fresh demo data set.
type Seeder struct {
	db    *gorm.DB
	svc   *service.Service
	fetch Fetcher
	now   func() time.Time
	cache map[string][]byte
}

func NewSeeder(conn *gorm.DB, svc *service.Service, fetch Fetcher) *Seeder {
	return &Seeder{
		db:    conn,
		svc:   svc,
		fetch: fetch,
		now:   func() time.Time { return time.Now().UTC() },
		cache: map[string][]byte{},
	}
}

// Run removes earlier seed records and inserts modelCount models and
// imageCount images, linking each image to models of the same author.
func (s *Seeder) Run(ctx context.Context, modelCount, imageCount int) (*Stats, error) {
	if err := s.cleanup(ctx); err != nil {
		return nil, fmt.Errorf("cleanup seed data: %w", err)
	}

	var allModels []uint
	byAuthor := map[string][]uint{}
	for i := 0; i < modelCount; i++ {
		src := modelSources[i%len(modelSources)]
		author := authors[i%len(authors)]
		data, err := s.get(ctx, src.url)
		if err != nil {
			return nil, err
		}
		m := &model.Model{MediaBase: model.MediaBase{
			Title:        fmt.Sprintf("%s Variant %d", src.name, i/len(modelSources)+1),
			Author:       author,
			OriginalName: src.name + ".glb",
			MimeType:     "model/gltf-binary",
		}}
		created, err := s.createModel(ctx, m, seedName(storage.KindModels, i, ".glb"), data, s.now().Add(-time.Duration(72+i*6)*time.Hour))
		if err != nil {
			return nil, err
		}
		allModels = append(allModels, created.ID)
		byAuthor[author] = append(byAuthor[author], created.ID)
	}

	for i := 0; i < imageCount; i++ {
		src := imageSources[i%len(imageSources)]
		author := authors[(i+1)%len(authors)]
		data, err := s.get(ctx, src.url)
		if err != nil {
			return nil, err
		}
		img := &model.Image{MediaBase: model.MediaBase{
			Title:        fmt.Sprintf("%s Capture %02d", src.name, i+1),
			Author:       author,
			OriginalName: fmt.Sprintf("%s-%02d.jpg", src.name, i+1),
			MimeType:     "image/jpeg",
		}}
		related := relatedModels(allModels, byAuthor[author], i)
		if _, err := s.createImage(ctx, img, seedName(storage.KindImages, i, ".jpg"), data, s.now().Add(-time.Duration(48+i*3)*time.Hour), related); err != nil {
			return nil, err
		}
	}
	return s.stats(ctx)
}

func (s *Seeder) createModel(ctx context.Context, m *model.Model, name string, data []byte, createdAt time.Time) (*model.Model, error) {
	if err := s.write(storage.KindModels, name, data); err != nil {
		return nil, err
	}
	m.StoredPath = name
	m.FileSize = int64(len(data))
	created, err := s.svc.Logic().Models().Create(ctx, m, func(tx *gorm.DB, id uint) error {
		return backdate(ctx, tx, &model.Model{}, id, createdAt)
	})
	if err != nil {
		s.remove(ctx, storage.KindModels, name)
		return nil, fmt.Errorf("insert model %s: %w", name, err)
	}
	return created, nil
}

func (s *Seeder) createImage(ctx context.Context, img *model.Image, name string, data []byte, createdAt time.Time, modelIDs []uint) (*model.Image, error) {
	if err := s.write(storage.KindImages, name, data); err != nil {
		return nil, err
	}
	img.StoredPath = name
	img.FileSize = int64(len(data))
	links := db.NewLinkDAO()
	created, err := s.svc.Logic().Images().Create(ctx, img, func(tx *gorm.DB, id uint) error {
		if err := backdate(ctx, tx, &model.Image{}, id, createdAt); err != nil {
			return err
		}
		return links.ReplaceForImage(ctx, tx, id, modelIDs)
	})
	if err != nil {
		s.remove(ctx, storage.KindImages, name)
		return nil, fmt.Errorf("insert image %s: %w", name, err)
	}
	return created, nil
}

func backdate(ctx context.Context, tx *gorm.DB, table any, id uint, createdAt time.Time) error {
	return tx.WithContext(ctx).Model(table).Where("id = ?", id).Update("created_at", createdAt).Error
}

// cleanup deletes seeded records through the service so files and links go
// with them.
func (s *Seeder) cleanup(ctx context.Context) error {
	pattern := seedPrefix + "%"

	var imageIDs []uint
	if err := s.db.WithContext(ctx).Model(&model.Image{}).
		Where("stored_path LIKE ?", pattern).Pluck("id", &imageIDs).Error; err != nil {
		return err
	}
	for _, id := range imageIDs {
		if err := s.svc.DeleteImage(ctx, id); err != nil {
			return err
		}
	}

	var modelIDs []uint
	if err := s.db.WithContext(ctx).Model(&model.Model{}).
		Where("stored_path LIKE ? OR preview_stored_path LIKE ?", pattern, pattern).Pluck("id", &modelIDs).Error; err != nil {
		return err
	}
	for _, id := range modelIDs {
		if err := s.svc.DeleteModel(ctx, id); err != nil {
			return err
		}
	}
	if len(imageIDs)+len(modelIDs) > 0 {
		hlog.CtxInfof(ctx, "removed %d seeded images and %d seeded models", len(imageIDs), len(modelIDs))
	}
	return nil
}

func (s *Seeder) stats(ctx context.Context) (*Stats, error) {
	var st Stats
	conn := s.db.WithContext(ctx)
	if err := conn.Model(&model.Model{}).Count(&st.Models).Error; err != nil {
		return nil, err
	}
	if err := conn.Model(&model.Image{}).Count(&st.Images).Error; err != nil {
		return nil, err
	}
	if err := conn.Model(&model.ImageModelLink{}).Count(&st.Links).Error; err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Seeder) get(ctx context.Context, url string) ([]byte, error) {
	if data, ok := s.cache[url]; ok {
		return data, nil
	}
	data, err := s.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	s.cache[url] = data
	return data, nil
}

func (s *Seeder) write(kind storage.Kind, name string, data []byte) error {
	p, err := s.svc.Storage().Resolve(kind, name)
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

func (s *Seeder) remove(ctx context.Context, kind storage.Kind, name string) {
	if err := s.svc.Storage().Delete(kind, name, storage.DeleteOptions{IgnoreMissing: true}); err != nil {
		hlog.CtxWarnf(ctx, "remove seed file %s: %v", name, err)
	}
}

func seedName(kind storage.Kind, index int, ext string) string {
	return fmt.Sprintf("%s%s-%03d%s", seedPrefix, kind, index+1, ext)
}

// relatedModels picks one model, or two for every third image, preferring
// models of the same author.
func relatedModels(all, sameAuthor []uint, index int) []uint {
	pool := sameAuthor
	if len(pool) == 0 {
		pool = all
	}
	if len(pool) == 0 {
		return nil
	}
	count := 1
	if index%3 == 0 {
		count = 2
	}
	start := index % len(pool)
	var selected []uint
	for i := 0; i < count; i++ {
		id := pool[(start+i)%len(pool)]
		if !containsID(selected, id) {
			selected = append(selected, id)
		}
	}
	return selected
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// --------------------- Fetchers ---------------------

// HTTPFetcher downloads with the hertz client, retrying transient failures.
func HTTPFetcher(c *client.Client, attempts uint) Fetcher {
	return func(ctx context.Context, url string) ([]byte, error) {
		return backoff.Retry(ctx, func() ([]byte, error) {
			status, body, err := c.Get(ctx, nil, url)
			if err != nil {
				return nil, err
			}
			if status != consts.StatusOK {
				return nil, fmt.Errorf("HTTP %d", status)
			}
			return body, nil
		}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(attempts))
	}
}

// OfflineFetcher synthesizes minimal files with valid signatures instead of
// downloading.
func OfflineFetcher() Fetcher {
	return func(_ context.Context, url string) ([]byte, error) {
		name := path.Base(url)
		if strings.HasSuffix(name, ".glb") {
			return append([]byte("glTF\x02\x00\x00\x00"), name...), nil
		}
		return append([]byte{0xff, 0xd8, 0xff, 0xe0}, name...), nil
	}
}
