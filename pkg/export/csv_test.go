package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	out, err := CSV(Dataset{
		Headers: []string{"course_code", "grade_letter", "grade_point"},
		Rows: [][]string{
			{"CS101", "A", "4.00"},
			{"MA201", "B+", "3.30"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "course_code,grade_letter,grade_point\nCS101,A,4.00\nMA201,B+,3.30\n", string(out))
}

func TestCSVQuotesEmbeddedCommas(t *testing.T) {
	out, err := CSV(Dataset{
		Headers: []string{"title"},
		Rows:    [][]string{{"Algorithms, Advanced"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "title\n\"Algorithms, Advanced\"\n", string(out))
}
