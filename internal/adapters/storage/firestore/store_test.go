package firestore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PabloGalante/linkpitch/internal/domain"
)

func TestTimelineDocRoundTripPads(t *testing.T) {
	doc := toTimelineDoc(domain.Timeline{Positions: []string{"CTO", "Engineer"}, Dates: []string{"2020"}})

	assert.Equal(t, []string{"", ""}, doc.Institutions)
	assert.Equal(t, []string{"2020", ""}, doc.Dates)

	back := timelineDoc{Positions: []string{"A"}}.timeline()
	assert.Equal(t, domain.Timeline{Positions: []string{"A"}, Institutions: []string{""}, Dates: []string{""}}, back)
}
