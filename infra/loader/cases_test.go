package loader

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lkirchmair/bedcast/core/dataset"
)

const casesCSV = `Time;Bundesland;BundeslandID;Altersgruppe;AltersgruppeID;Geschlecht;Anzahl
01.03.2021 00:00:00;Tirol;7;25-34;4;M;60
01.03.2021 00:00:00;Tirol;7;25-34;4;W;40
02.03.2021 00:00:00;Tirol;7;25-34;4;M;65
02.03.2021 00:00:00;Tirol;7;25-34;4;W;45
03.03.2021 00:00:00;Tirol;7;25-34;4;M;66
03.03.2021 00:00:00;Tirol;7;25-34;4;W;46
04.03.2021 00:00:00;Tirol;7;25-34;4;M;66
04.03.2021 00:00:00;Tirol;7;25-34;4;W;46
05.03.2021 00:00:00;Tirol;7;25-34;4;M;70
05.03.2021 00:00:00;Tirol;7;25-34;4;W;50
01.03.2021 00:00:00;Tirol;7;35-44;5;M;50
02.03.2021 00:00:00;Tirol;7;35-44;5;M;52
03.03.2021 00:00:00;Tirol;7;35-44;5;M;52
04.03.2021 00:00:00;Tirol;7;35-44;5;M;60
05.03.2021 00:00:00;Tirol;7;35-44;5;M;60
01.03.2021 00:00:00;Wien;9;25-34;4;M;100
02.03.2021 00:00:00;Wien;9;25-34;4;M;90
03.03.2021 00:00:00;Wien;9;25-34;4;M;95
04.03.2021 00:00:00;Wien;9;25-34;4;M;95
05.03.2021 00:00:00;Wien;9;25-34;4;M;95
`

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestReadCases(t *testing.T) {
	c, err := ReadCases(strings.NewReader(casesCSV))
	require.NoError(t, err)
	assert.Equal(t, day("2021-03-01"), c.MinDate())
	assert.Equal(t, day("2021-03-05"), c.MaxDate())
}

func TestCasesDifferencesAndAggregates(t *testing.T) {
	c, err := ReadCases(strings.NewReader(casesCSV))
	require.NoError(t, err)

	// Sexes are summed per day; categories are summed across the filter.
	got, err := c.Cases(day("2021-03-02"), day("2021-03-05"), "Tirol", []string{"25-34", "35-44"}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{12, 2, 8, 8}, got)

	got, err = c.Cases(day("2021-03-02"), day("2021-03-05"), "Tirol", []string{"25-34"}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 2, 0, 8}, got)

	// A category not present in the data contributes zero.
	got, err = c.Cases(day("2021-03-02"), day("2021-03-05"), "Tirol", []string{"<5"}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 0}, got)
}

func TestCasesBufferExtendsBackward(t *testing.T) {
	c, err := ReadCases(strings.NewReader(casesCSV))
	require.NoError(t, err)

	got, err := c.Cases(day("2021-03-03"), day("2021-03-05"), "Tirol", []string{"25-34"}, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 2, 0, 8}, got, "buffer day prepended")
}

func TestCasesClampsNegativeDiffs(t *testing.T) {
	c, err := ReadCases(strings.NewReader(casesCSV))
	require.NoError(t, err)

	got, err := c.Cases(day("2021-03-02"), day("2021-03-05"), "Wien", []string{"25-34"}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 5, 0, 0}, got, "cumulative corrections clamp to zero")
}

func TestCasesErrors(t *testing.T) {
	c, err := ReadCases(strings.NewReader(casesCSV))
	require.NoError(t, err)

	_, err = c.Cases(day("2021-03-02"), day("2021-03-05"), "Atlantis", []string{"25-34"}, 0)
	assert.ErrorIs(t, err, dataset.ErrUnknownRegion)

	// Differencing needs the day before the buffered window.
	_, err = c.Cases(day("2021-03-01"), day("2021-03-05"), "Tirol", []string{"25-34"}, 0)
	assert.ErrorIs(t, err, dataset.ErrWindowOutOfRange)

	_, err = c.Cases(day("2021-03-03"), day("2021-03-05"), "Tirol", []string{"25-34"}, 2)
	assert.ErrorIs(t, err, dataset.ErrWindowOutOfRange)

	_, err = c.Cases(day("2021-03-02"), day("2021-03-06"), "Tirol", []string{"25-34"}, 0)
	assert.ErrorIs(t, err, dataset.ErrWindowOutOfRange)

	_, err = c.Cases(day("2021-03-02"), day("2021-03-05"), "Tirol", []string{"25-34"}, -1)
	assert.Error(t, err)
}

func TestCasesMissingDay(t *testing.T) {
	gapped := `Time;Bundesland;Altersgruppe;Anzahl
01.03.2021 00:00:00;Tirol;25-34;10
03.03.2021 00:00:00;Tirol;25-34;14
`
	c, err := ReadCases(strings.NewReader(gapped))
	require.NoError(t, err)
	_, err = c.Cases(day("2021-03-02"), day("2021-03-03"), "Tirol", []string{"25-34"}, 0)
	assert.ErrorIs(t, err, dataset.ErrMissingDay)
}

func TestReadCasesRejectsBadInput(t *testing.T) {
	_, err := ReadCases(strings.NewReader("Time;Bundesland;Anzahl\n"))
	assert.Error(t, err, "missing Altersgruppe column")

	_, err = ReadCases(strings.NewReader("Time;Bundesland;Altersgruppe;Anzahl\n"))
	assert.Error(t, err, "no rows")

	_, err = ReadCases(strings.NewReader(
		"Time;Bundesland;Altersgruppe;Anzahl\nnot-a-date;Tirol;25-34;1\n"))
	assert.Error(t, err)

	_, err = ReadCases(strings.NewReader(
		"Time;Bundesland;Altersgruppe;Anzahl\n01.03.2021 00:00:00;Tirol;25-34;many\n"))
	assert.Error(t, err)
}
