package cli

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagesearch/types"
)

func resetFlags() {
	configPath, storePath, storeDriver, decodeBackend = "", "", "", ""
	logLevel, logFile, metricsTextfile = "", "", ""
	debugMode = false
	scanForce, scanWorkers = false, 0
	searchTop, searchAll, searchParallel, searchSkipMismatched, searchJSON = 0, false, false, false, false
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func writeImage(t *testing.T, path string, tint color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(int(tint.R) * x / 16), G: tint.G, B: uint8(int(tint.B) * y / 16), A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"scan", "search", "show", "stats"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestSearchCmd_HasTopFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("top")
	require.NotNil(t, flag)
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestScanCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := execute(t, "scan")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestShowCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tile.png")
	writeImage(t, path, color.RGBA{R: 255, G: 128, B: 255, A: 255})

	out, err := execute(t, "show", "--backend", "go", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Channels: 3")
	assert.Contains(t, out, "Average brightness:")
	assert.Contains(t, out, "Histogram of color channel 0:")
	assert.Contains(t, out, "Histogram of color channel 2:")
}

func TestScanSearchStats(t *testing.T) {
	for _, driver := range []string{"json", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			dir := t.TempDir()
			images := filepath.Join(dir, "images")
			require.NoError(t, os.Mkdir(images, 0o755))
			warm := filepath.Join(images, "warm.png")
			cold := filepath.Join(images, "cold.png")
			writeImage(t, warm, color.RGBA{R: 255, G: 100, B: 20, A: 255})
			writeImage(t, cold, color.RGBA{R: 20, G: 40, B: 255, A: 255})
			store := filepath.Join(dir, "corpus."+driver)
			textfile := filepath.Join(dir, "metrics.prom")
			common := []string{"--backend", "go", "--driver", driver, "--store", store}

			out, err := execute(t, append([]string{"scan", "--metrics-textfile", textfile}, append(common, images)...)...)
			require.NoError(t, err)
			assert.Contains(t, out, "Indexing complete.")
			assert.FileExists(t, textfile)

			out, err = execute(t, append([]string{"stats"}, common...)...)
			require.NoError(t, err)
			assert.Contains(t, out, "Fingerprints: 2")

			out, err = execute(t, append([]string{"search", "--top", "1"}, append(common, warm)...)...)
			require.NoError(t, err)
			assert.Contains(t, out, "1. warm")
			assert.Contains(t, out, "Similarity: 100.00%")
			assert.NotContains(t, out, "2. cold")

			out, err = execute(t, append([]string{"search", "--all", "--json", "--parallel"}, append(common, cold)...)...)
			require.NoError(t, err)
			var results []types.SimilarityResult
			require.NoError(t, json.Unmarshal([]byte(out), &results))
			require.Len(t, results, 2)
			assert.Equal(t, "cold", results[0].Entry.Filename)
			assert.Equal(t, "warm", results[1].Entry.Filename)
		})
	}
}

func TestConfigFileAndOverrides(t *testing.T) {
	dir := t.TempDir()
	store := filepath.Join(dir, "from-config.json")
	cfgFile := filepath.Join(dir, "imagesearch.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("store:\n  path: "+store+"\ndecode:\n  backend: go\n"), 0o600))

	out, err := execute(t, "stats", "--config", cfgFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Store: "+store+" (json)")
	assert.Contains(t, out, "Fingerprints: 0")

	_, err = execute(t, "stats", "--config", cfgFile, "--driver", "mysql")
	assert.ErrorContains(t, err, "store.driver")
}
