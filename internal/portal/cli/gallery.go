package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/communityhub/internal/portal/models"
)

func (a *App) listGallery() {
	if !a.requireLogin() {
		return
	}
	items := a.gallery.List()
	if a.user.Role != models.RoleAdmin {
		items = a.gallery.ListPublic()
	}
	if len(items) == 0 {
		fmt.Println("Gallery is empty")
		return
	}
	for _, item := range items {
		visibility := "public"
		if !item.IsPublic {
			visibility = "members"
		}
		fmt.Printf("%-8s %-7s %s  %s\n", item.Type, visibility, item.Title, item.URL)
	}
}

func (a *App) uploadFile(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	if a.user.Role != models.RoleAdmin {
		fmt.Println("Only admins can upload to the gallery")
		return
	}
	if len(args) == 0 {
		fmt.Println("Usage: upload <file>")
		return
	}
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	ext := strings.ToLower(filepath.Ext(path))
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	typ := models.GalleryDocument
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		typ = models.GalleryPhoto
	}

	title, err := GetSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	visibility, err := GetSimpleText(a.reader, "Public? (y/n)", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	item, err := a.gallery.Upload(ctx, title, typ, strings.HasPrefix(strings.ToLower(visibility), "y"), data, contentType)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Uploaded:", item.URL)
}
