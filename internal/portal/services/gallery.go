package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/communityhub/internal/logging"
	"github.com/dmitrijs2005/communityhub/internal/portal/blobstore"
	"github.com/dmitrijs2005/communityhub/internal/portal/engine"
	"github.com/dmitrijs2005/communityhub/internal/portal/idgen"
	"github.com/dmitrijs2005/communityhub/internal/portal/models"
)

// GalleryService manages shared photos and documents. Bytes live in the
// blob store; the collection record carries the metadata and the serving
// URL.
type GalleryService struct {
	eng   *engine.Engine
	blobs blobstore.Store
	ids   idgen.Generator
	log   logging.Logger
}

func NewGalleryService(eng *engine.Engine, blobs blobstore.Store, ids idgen.Generator, log logging.Logger) *GalleryService {
	return &GalleryService{eng: eng, blobs: blobs, ids: ids, log: log.With("service", "gallery")}
}

func blobKey(id string) string {
	return "gallery/" + id
}

// Upload stores the bytes and registers the gallery record. The blob write
// happens first so a stored record always points at existing content.
func (s *GalleryService) Upload(ctx context.Context, title string, typ models.GalleryItemType, isPublic bool, data []byte, contentType string) (models.GalleryItem, error) {
	id := s.ids.NewID()
	url, err := s.blobs.Put(ctx, blobKey(id), data, contentType)
	if err != nil {
		return models.GalleryItem{}, fmt.Errorf("failed to store blob: %w", err)
	}

	item := models.GalleryItem{
		ID:       id,
		URL:      url,
		Title:    title,
		Type:     typ,
		IsPublic: isPublic,
	}
	doc, err := models.ToDocument(item)
	if err != nil {
		return models.GalleryItem{}, err
	}
	if _, err := s.eng.Apply(ctx, models.CollectionGallery, engine.OpSet, doc, id); err != nil {
		return models.GalleryItem{}, err
	}
	return item, nil
}

// Download returns the stored bytes for a gallery item.
func (s *GalleryService) Download(ctx context.Context, id string) ([]byte, error) {
	return s.blobs.Get(ctx, blobKey(id))
}

// Delete removes the record and then the blob. A failed blob delete leaves
// an orphan object, which is preferable to a record pointing nowhere.
func (s *GalleryService) Delete(ctx context.Context, id string) error {
	if _, err := s.eng.Apply(ctx, models.CollectionGallery, engine.OpDelete, nil, id); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, blobKey(id)); err != nil {
		s.log.Warn(ctx, "gallery record removed but blob delete failed", "item", id, "error", err)
	}
	return nil
}

// List returns every gallery item.
func (s *GalleryService) List() []models.GalleryItem {
	return listAs[models.GalleryItem](s.eng.State(), models.CollectionGallery)
}

// ListPublic returns the items visible without a file-access approval.
func (s *GalleryService) ListPublic() []models.GalleryItem {
	all := s.List()
	out := make([]models.GalleryItem, 0, len(all))
	for _, item := range all {
		if item.IsPublic {
			out = append(out, item)
		}
	}
	return out
}
