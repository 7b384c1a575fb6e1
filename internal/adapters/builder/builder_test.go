package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melih/drydock/internal/recipe"
)

func TestLoadRecipe(t *testing.T) {
	t.Run("DefaultFileName", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, recipe.DefaultRecipeFile, recipe.Render(recipe.Default()))

		r, err := loadRecipe(dir, "")
		require.NoError(t, err)
		assert.Equal(t, recipe.Default(), r)
	})

	t.Run("CustomFileName", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "bot.recipe", "FROM alpine:3.18\nCMD [\"sh\"]\n")

		r, err := loadRecipe(dir, "bot.recipe")
		require.NoError(t, err)
		assert.Equal(t, "alpine:3.18", r.BaseImage)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := loadRecipe(t.TempDir(), "")
		assert.Error(t, err)
	})

	t.Run("UnsupportedDirective", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, recipe.DefaultRecipeFile, "FROM alpine:3.18\nRUN echo hi\nCMD [\"sh\"]\n")

		_, err := loadRecipe(dir, "")
		require.Error(t, err)
		var unsupported *recipe.UnsupportedDirectiveError
		assert.ErrorAs(t, err, &unsupported)
	})
}
