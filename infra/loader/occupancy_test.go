package loader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lkirchmair/bedcast/core/dataset"
)

const occupancyCSV = `Meldedatum;BundeslandID;Bundesland;NormalBettenBelCovid19;IntensivBettenBelCovid19
01.03.2021 00:00:00;7;Tirol;100;20
02.03.2021 00:00:00;7;Tirol;110;22
03.03.2021 00:00:00;7;Tirol;105;21
04.03.2021 00:00:00;7;Tirol;90;18
05.03.2021 00:00:00;7;Tirol;80;15
01.03.2021 00:00:00;9;Wien;400;60
02.03.2021 00:00:00;9;Wien;410;62
03.03.2021 00:00:00;9;Wien;420;64
04.03.2021 00:00:00;9;Wien;430;66
05.03.2021 00:00:00;9;Wien;440;68
`

func TestReadOccupancy(t *testing.T) {
	o, err := ReadOccupancy(strings.NewReader(occupancyCSV))
	require.NoError(t, err)
	assert.Equal(t, day("2021-03-01"), o.MinDate())
	assert.Equal(t, day("2021-03-05"), o.MaxDate())
}

func TestOccupancyByBedType(t *testing.T) {
	o, err := ReadOccupancy(strings.NewReader(occupancyCSV))
	require.NoError(t, err)

	normal, err := o.Occupancy(day("2021-03-01"), day("2021-03-05"), "Tirol", dataset.BedNormal)
	require.NoError(t, err)
	assert.Equal(t, []int{100, 110, 105, 90, 80}, normal)

	icu, err := o.Occupancy(day("2021-03-02"), day("2021-03-04"), "Tirol", dataset.BedICU)
	require.NoError(t, err)
	assert.Equal(t, []int{22, 21, 18}, icu)

	wien, err := o.Occupancy(day("2021-03-05"), day("2021-03-05"), "Wien", dataset.BedNormal)
	require.NoError(t, err)
	assert.Equal(t, []int{440}, wien)
}

func TestOccupancyErrors(t *testing.T) {
	o, err := ReadOccupancy(strings.NewReader(occupancyCSV))
	require.NoError(t, err)

	_, err = o.Occupancy(day("2021-03-01"), day("2021-03-05"), "Tirol", "IMC")
	assert.ErrorIs(t, err, dataset.ErrUnknownBedType)

	_, err = o.Occupancy(day("2021-03-01"), day("2021-03-05"), "Atlantis", dataset.BedNormal)
	assert.ErrorIs(t, err, dataset.ErrUnknownRegion)

	_, err = o.Occupancy(day("2021-02-28"), day("2021-03-05"), "Tirol", dataset.BedNormal)
	assert.ErrorIs(t, err, dataset.ErrWindowOutOfRange)

	_, err = o.Occupancy(day("2021-03-01"), day("2021-03-06"), "Tirol", dataset.BedNormal)
	assert.ErrorIs(t, err, dataset.ErrWindowOutOfRange)
}

func TestOccupancyMissingDay(t *testing.T) {
	gapped := `Meldedatum;Bundesland;NormalBettenBelCovid19;IntensivBettenBelCovid19
01.03.2021 00:00:00;Tirol;100;20
03.03.2021 00:00:00;Tirol;105;21
`
	o, err := ReadOccupancy(strings.NewReader(gapped))
	require.NoError(t, err)
	_, err = o.Occupancy(day("2021-03-01"), day("2021-03-03"), "Tirol", dataset.BedNormal)
	assert.ErrorIs(t, err, dataset.ErrMissingDay)
}

func TestReadOccupancyRejectsBadInput(t *testing.T) {
	_, err := ReadOccupancy(strings.NewReader("Meldedatum;Bundesland;NormalBettenBelCovid19\n"))
	assert.Error(t, err, "missing ICU column")

	_, err = ReadOccupancy(strings.NewReader(
		"Meldedatum;Bundesland;NormalBettenBelCovid19;IntensivBettenBelCovid19\n"))
	assert.Error(t, err, "no rows")

	_, err = ReadOccupancy(strings.NewReader(
		"Meldedatum;Bundesland;NormalBettenBelCovid19;IntensivBettenBelCovid19\n01.03.2021 00:00:00;Tirol;x;20\n"))
	assert.Error(t, err)
}
