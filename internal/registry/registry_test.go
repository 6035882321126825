package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/prebloom/internal/strategyconfig"
)

const nasdaqListed = `Symbol|Security Name|Market Category|Test Issue|Financial Status|Round Lot Size|ETF|NextShares
ABCD|Abcd Robotics Inc. - Common Stock|Q|N|N|100|N|N
QQQX|Some Nasdaq Fund|G|N|N|100|Y|N

WXYZ|XYZ Therapeutics Inc. - Common Stock|S|N|N|100|N|N
BAD
ZVZZT.W|Test Warrant|G|Y|N|100|N|N
File Creation Time: 1017202608:31|||||||
`

const otherListed = "ACT Symbol|Security Name|Exchange|CQS Symbol|ETF|Round Lot Size|Test Issue|NASDAQ Symbol\r\n" +
	"ABCD|Other Name For Abcd|N|ABCD|Y|100|N|ABCD\r\n" +
	"lmno|Lmno Holdings Corp|N|LMNO|n|100|N|LMNO\r\n" +
	"BRK.B|Berkshire Hathaway Class B|N|BRK.B|N|100|N|BRK.B\r\n" +
	"File Creation Time: 1017202608:31|||||||\r\n"

type fakeFetcher struct {
	files map[string]string
	errs  map[string]error
}

func (f *fakeFetcher) Fetch(_ context.Context, src strategyconfig.ListingSource) (string, error) {
	if err := f.errs[src.Name]; err != nil {
		return "", err
	}
	return f.files[src.Name], nil
}

func testListings() strategyconfig.Listings {
	return strategyconfig.Default().Listings
}

func TestParse(t *testing.T) {
	parsed, err := Parse("nasdaqlisted", nasdaqListed, "Symbol", "File Creation Time")
	require.NoError(t, err)

	require.Len(t, parsed.Records, 3)
	assert.Equal(t, "ABCD", parsed.Records[0].Symbol)
	assert.Equal(t, "Abcd Robotics Inc. - Common Stock", parsed.Records[0].Name)
	assert.False(t, parsed.Records[0].IsETF)
	assert.True(t, parsed.Records[1].IsETF)
	assert.Equal(t, "WXYZ", parsed.Records[2].Symbol)

	// "BAD" (short row) + "ZVZZT.W" (non-letters)
	assert.Equal(t, 2, parsed.Skipped)
}

func TestParseNormalizesSymbolAndETF(t *testing.T) {
	parsed, err := Parse("otherlisted", otherListed, "ACT Symbol", "File Creation Time")
	require.NoError(t, err)

	require.Len(t, parsed.Records, 2)
	assert.Equal(t, "LMNO", parsed.Records[1].Symbol)
	assert.False(t, parsed.Records[1].IsETF)
	assert.Equal(t, 1, parsed.Skipped) // BRK.B
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		column string
		want   error
	}{
		{"empty", "", "Symbol", ErrFetch},
		{"whitespace only", "\n  \n", "Symbol", ErrFetch},
		{"missing symbol column", "Ticker|Security Name|ETF\nABCD|x|N\n", "Symbol", ErrMissingColumn},
		{"missing etf column", "Symbol|Security Name\nABCD|x\n", "Symbol", ErrMissingColumn},
		{"wrong symbol column for file", nasdaqListed, "ACT Symbol", ErrMissingColumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("test", tt.text, tt.column, "File Creation Time")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestLoadPrimaryWins(t *testing.T) {
	fetcher := &fakeFetcher{files: map[string]string{
		"nasdaqlisted": nasdaqListed,
		"otherlisted":  otherListed,
	}}

	universe, stats, err := Load(context.Background(), fetcher, testListings())
	require.NoError(t, err)

	assert.Equal(t, 4, universe.Count()) // ABCD QQQX WXYZ LMNO
	rec, ok := universe.Lookup("ABCD")
	require.True(t, ok)
	assert.Equal(t, "Abcd Robotics Inc. - Common Stock", rec.Name)
	assert.False(t, rec.IsETF, "secondary ETF flag must not override primary")

	assert.True(t, universe.Contains("LMNO"))
	assert.Equal(t, "Lmno Holdings Corp", universe.Name("LMNO"))

	require.Len(t, stats.Sources, 2)
	assert.Equal(t, 3, stats.Sources[0].Added)
	assert.Equal(t, 1, stats.Sources[1].Added)
	assert.Equal(t, 4, stats.Verified)
	assert.Equal(t, 4, stats.WithMeta)
}

func TestLoadFailsOnEitherSource(t *testing.T) {
	tests := []struct {
		name    string
		fetcher *fakeFetcher
		want    error
	}{
		{
			name: "primary fetch error",
			fetcher: &fakeFetcher{
				files: map[string]string{"otherlisted": otherListed},
				errs:  map[string]error{"nasdaqlisted": errors.New("connection reset")},
			},
			want: ErrFetch,
		},
		{
			name: "secondary empty",
			fetcher: &fakeFetcher{files: map[string]string{
				"nasdaqlisted": nasdaqListed,
				"otherlisted":  "",
			}},
			want: ErrFetch,
		},
		{
			name: "secondary missing column",
			fetcher: &fakeFetcher{files: map[string]string{
				"nasdaqlisted": nasdaqListed,
				"otherlisted":  "Symbol|Security Name|ETF\nLMNO|x|N\n",
			}},
			want: ErrMissingColumn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			universe, stats, err := Load(context.Background(), tt.fetcher, testListings())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Nil(t, universe)
			assert.Nil(t, stats)
		})
	}
}
