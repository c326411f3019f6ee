// internal/utils/slug.go
package utils

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nickopusan/caufi-backend/internal/models"
)

// Slugify lowercases the name and collapses every non-alphanumeric run into
// a single dash.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "product"
	}
	return slug
}

// UniqueProductSlug appends -1, -2, ... until the slug is free. excludeID
// lets an update keep its own slug.
func UniqueProductSlug(db *gorm.DB, name string, excludeID uint) (string, error) {
	base := Slugify(name)
	slug := base
	for counter := 1; ; counter++ {
		query := db.Model(&models.Product{}).Where("slug = ?", slug)
		if excludeID != 0 {
			query = query.Where("id <> ?", excludeID)
		}

		var count int64
		if err := query.Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}

func GenerateSKU() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
