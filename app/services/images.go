package services

import (
	"context"
	"fmt"
	"mime"
	"strconv"

	"github.com/shashiranjanraj/kproduct/app/repositories"
	"github.com/shashiranjanraj/kproduct/config"
	"github.com/shashiranjanraj/kproduct/pkg/logger"
	"github.com/shashiranjanraj/kproduct/pkg/storage"
)

// ExportImages writes every stored product image to disk as
// products/<id><ext> and returns how many files it wrote. Products without
// an image are skipped.
func (s *ProductService) ExportImages(ctx context.Context, disk storage.Disk) (int, error) {
	log := logger.WithCtx(ctx)
	written := 0
	for number := 0; ; number++ {
		pageable, err := repositories.NewPageable(number, config.MaxPageSize(), config.MaxPageSize(), nil)
		if err != nil {
			return written, err
		}
		page, err := s.repo.FindAll(ctx, pageable)
		if err != nil {
			return written, fmt.Errorf("export images: page %d: %w", number, err)
		}

		for _, p := range page.Content {
			if len(p.Image) == 0 || p.ID == nil {
				continue
			}
			path := "products/" + strconv.FormatInt(*p.ID, 10) + extension(p.ImageContentType)
			if err := disk.Put(ctx, path, p.Image); err != nil {
				return written, fmt.Errorf("export images: product %d: %w", *p.ID, err)
			}
			log.Debug("exported product image", "id", *p.ID, "path", path)
			written++
		}

		if number+1 >= page.TotalPages() {
			return written, nil
		}
	}
}

func extension(contentType string) string {
	exts, err := mime.ExtensionsByType(contentType)
	if err != nil || len(exts) == 0 {
		return ".bin"
	}
	return exts[0]
}
