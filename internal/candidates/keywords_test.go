package candidates_test

import (
	"fmt"
	"testing"

	"github.com/alvmarrod/domain-finder/internal/candidates"
	"github.com/stretchr/testify/assert"
)

func TestVariations(t *testing.T) {
	v := candidates.Variations("  SEO ", candidates.MaxVariationsPerKeyword)

	assert.Len(t, v, 15)
	assert.Equal(t, "seo", v[0])
	assert.Equal(t, "seohub", v[1])
	assert.Equal(t, "seoworld", v[9])
	assert.Equal(t, "myseo", v[10])
	assert.Equal(t, "bestseo", v[14])
	assert.NotContains(t, v, "hotseo")
}

func TestVariations_Empty(t *testing.T) {
	assert.Empty(t, candidates.Variations("   ", 15))
}

func TestExpand_VariationMajorOrderAndCap(t *testing.T) {
	got := candidates.Expand([]string{"seo"}, []string{"sa.com", "ru.com"}, 3)
	assert.Equal(t, []string{"seo.sa.com", "seo.ru.com", "seohub.sa.com"}, got)
}

func TestExpand_DeduplicatesKeywordsAndTLDs(t *testing.T) {
	got := candidates.Expand([]string{"SEO", " seo"}, []string{".Sa.com", "sa.com", ""}, 0)

	assert.Len(t, got, 15)
	assert.Equal(t, "seo.sa.com", got[0])
}

func TestExpand_CapsTotalVariations(t *testing.T) {
	var keywords []string
	for i := 0; i < 10; i++ {
		keywords = append(keywords, fmt.Sprintf("kw%d", i))
	}

	got := candidates.Expand(keywords, []string{"com"}, 0)
	assert.Len(t, got, candidates.MaxVariations)
}

func TestExpand_NoKeywords(t *testing.T) {
	assert.Empty(t, candidates.Expand(nil, candidates.DefaultTLDs, 50))
}

func TestSplitKeywords(t *testing.T) {
	assert.Equal(t, []string{"seo", "web design"}, candidates.SplitKeywords(" seo, ,web design,"))
	assert.Empty(t, candidates.SplitKeywords(""))
}

func TestClean(t *testing.T) {
	assert.Equal(t, []string{"a.com", "b.com"}, candidates.Clean([]string{" A.com", "", "b.com", "a.com"}))
}
