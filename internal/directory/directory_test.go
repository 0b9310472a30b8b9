package directory_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"stocks/internal/directory"
)

func TestNew_PreservesOrder(t *testing.T) {
	t.Parallel()

	// Act: build the default directory
	d, err := directory.New(directory.Default())
	require.NoError(t, err)

	// Assert: order and contents match the configured list
	require.Equal(t, 7, d.Len())
	require.Equal(t, []string{"Apple", "Microsoft", "Google", "Amazon", "Facebook", "Novavax, Inc.", "Koss Corp."}, d.Names())
	c, ok := d.At(5)
	require.True(t, ok)
	require.Equal(t, directory.Company{Name: "Novavax, Inc.", Symbol: "NVAX"}, c)
}

func TestNew_Normalizes(t *testing.T) {
	t.Parallel()

	d, err := directory.New([]directory.Company{{Name: " Apple ", Symbol: " aapl"}})
	require.NoError(t, err)

	c, ok := d.At(0)
	require.True(t, ok)
	require.Equal(t, directory.Company{Name: "Apple", Symbol: "AAPL"}, c)
}

func TestNew_Rejects(t *testing.T) {
	t.Parallel()

	cases := map[string][]directory.Company{
		"empty name":     {{Name: "", Symbol: "AAPL"}},
		"empty symbol":   {{Name: "Apple", Symbol: " "}},
		"duplicate name": {{Name: "Apple", Symbol: "AAPL"}, {Name: "Apple", Symbol: "APPL"}},
	}
	for name, companies := range cases {
		_, err := directory.New(companies)
		require.Errorf(t, err, "%s: expected error", name)
	}
}

func TestDirectory_IsReadOnly(t *testing.T) {
	t.Parallel()

	in := directory.Default()
	d, err := directory.New(in)
	require.NoError(t, err)

	// Act: mutate both the input and a returned copy
	in[0].Symbol = "XXXX"
	out := d.Companies()
	out[1].Symbol = "YYYY"

	// Assert: the directory is unaffected
	c0, _ := d.At(0)
	c1, _ := d.At(1)
	require.Equal(t, "AAPL", c0.Symbol)
	require.Equal(t, "MSFT", c1.Symbol)
}

func TestDirectory_Lookup(t *testing.T) {
	t.Parallel()

	d, err := directory.New(directory.Default())
	require.NoError(t, err)

	c, err := d.Lookup("Koss Corp.")
	require.NoError(t, err)
	require.Equal(t, "KOSS", c.Symbol)

	c, err = d.Lookup("goog")
	require.NoError(t, err)
	require.Equal(t, "Google", c.Name)

	i, ok := d.IndexOf("AMZN")
	require.True(t, ok)
	require.Equal(t, 3, i)

	_, err = d.Lookup("Tesla")
	require.ErrorIs(t, err, directory.ErrNotFound)

	_, ok = d.At(7)
	require.False(t, ok)
	_, ok = d.At(-1)
	require.False(t, ok)
}
