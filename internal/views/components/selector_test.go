package components

import (
	"image"
	"testing"

	"image-selector/internal/models"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItems() []SelectorItem {
	return []SelectorItem{
		{Ref: models.MustReference("img1"), Thumbnail: image.NewRGBA(image.Rect(0, 0, 8, 8))},
		{Ref: models.MustReference("img2")},
		{Ref: models.MustReference("/tmp/outside.png"), Thumbnail: image.NewRGBA(image.Rect(0, 0, 8, 8))},
	}
}

func TestSelectorChecksReportTheirOwnReference(t *testing.T) {
	test.NewApp()

	var toggled []models.ImageReference
	var states []bool
	s := NewSelector(testItems(), SelectorHandlers{
		OnToggle: func(ref models.ImageReference, included bool) {
			toggled = append(toggled, ref)
			states = append(states, included)
		},
	})

	test.Tap(s.checks[models.MustReference("img2").Key()])
	test.Tap(s.checks[models.MustReference("/tmp/outside.png").Key()])
	test.Tap(s.checks[models.MustReference("img2").Key()])

	assert.Equal(t, []models.ImageReference{
		models.MustReference("img2"),
		models.MustReference("/tmp/outside.png"),
		models.MustReference("img2"),
	}, toggled)
	assert.Equal(t, []bool{true, true, false}, states)
	assert.False(t, s.IsChecked(models.MustReference("img2")))
	assert.True(t, s.IsChecked(models.MustReference("/tmp/outside.png")))
	assert.Equal(t, "1 image selected", s.countLabel.Text)
}

func TestSelectorStartsWithNothingIncluded(t *testing.T) {
	test.NewApp()

	s := NewSelector(testItems(), SelectorHandlers{})
	for _, item := range testItems() {
		assert.False(t, s.IsChecked(item.Ref))
	}
	assert.Equal(t, "No images selected", s.countLabel.Text)
}

func TestSelectorSelectAllTogglesEveryItem(t *testing.T) {
	test.NewApp()

	included := map[string]bool{}
	s := NewSelector(testItems(), SelectorHandlers{
		OnToggle: func(ref models.ImageReference, in bool) { included[ref.Key()] = in },
	})

	test.Tap(s.selectAll)
	require.Len(t, included, 3)
	for _, v := range included {
		assert.True(t, v)
	}

	test.Tap(s.selectAll)
	for _, v := range included {
		assert.False(t, v)
	}
}

func TestSelectorActionButtons(t *testing.T) {
	test.NewApp()

	var copies, deletes int
	s := NewSelector(testItems(), SelectorHandlers{
		OnCopy:   func() { copies++ },
		OnDelete: func() { deletes++ },
	})

	test.Tap(s.copyButton)
	test.Tap(s.deleteButton)
	test.Tap(s.deleteButton)

	assert.Equal(t, 1, copies)
	assert.Equal(t, 2, deletes)
}

func TestSelectorSelectAllFollowsIndividualChecks(t *testing.T) {
	test.NewApp()

	toggles := 0
	s := NewSelector(testItems(), SelectorHandlers{
		OnToggle: func(models.ImageReference, bool) { toggles++ },
	})

	for _, item := range testItems() {
		test.Tap(s.checks[item.Ref.Key()])
	}
	assert.True(t, s.selectAll.Checked)
	assert.Equal(t, 3, toggles)

	test.Tap(s.checks[models.MustReference("img2").Key()])
	assert.False(t, s.selectAll.Checked)
	assert.Equal(t, 4, toggles, "unticking select all must not clear the other boxes")
	assert.True(t, s.IsChecked(models.MustReference("img1")))
	assert.True(t, s.IsChecked(models.MustReference("/tmp/outside.png")))
	assert.Equal(t, "2 images selected", s.countLabel.Text)
}
