package catalog_test

import (
	"testing"

	"engitech-contact-backend/pkg/catalog"

	"github.com/stretchr/testify/assert"
)

func TestCatalog(t *testing.T) {
	t.Run("Should list six categories with five sub-services each", func(t *testing.T) {
		assert.Len(t, catalog.Categories, 6)
		for _, c := range catalog.Categories {
			assert.Len(t, c.SubServices, 5, c.Name)
		}
	})

	t.Run("Should recognise catalog services only", func(t *testing.T) {
		assert.True(t, catalog.IsService("Taxation Services"))
		assert.False(t, catalog.IsService("taxation services"))
		assert.False(t, catalog.IsService("Plumbing"))
	})

	t.Run("Should resolve sub-services per category", func(t *testing.T) {
		assert.Contains(t, catalog.SubServices("IT Services"), "Website Development")
		assert.Nil(t, catalog.SubServices("Plumbing"))
		assert.True(t, catalog.IsSubServiceOf("Bricks & Manufacturing", "Paver Blocks"))
		assert.False(t, catalog.IsSubServiceOf("IT Services", "Paver Blocks"))
	})
}
