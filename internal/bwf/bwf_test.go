package bwf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTool mimics bwfmetaedit. Files whose name contains "empty" report no
// time reference, "broken" fails, "slow" hangs. Writes are appended to
// $FAKE_BWF_LOG.
const fakeTool = `#!/bin/sh
case "$1" in
  --version)
    echo "BWF MetaEdit 23.04"
    ;;
  --out-core)
    case "$2" in
      *broken*) echo "cannot open $2" >&2; exit 1 ;;
      *slow*) exec sleep 5 ;;
      *empty*) printf 'FileName,Description,Originator,TimeReference\n"%s","",ACME,\n' "$2" ;;
      *) printf 'FileName,Description,Originator,TimeReference\n"%s","take 1, mic 2",ACME,96000\n' "$2" ;;
    esac
    ;;
  --out-tech)
    printf 'FileName,FileSize,Format,Channels,SampleRate,BitRate\n"%s",1024,Wave,2,96000,4608000\n' "$2"
    ;;
  --Timereference=*)
    echo "$1 $2" >> "$FAKE_BWF_LOG"
    ;;
  *)
    echo "unknown option $1" >&2
    exit 2
    ;;
esac
`

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	return logger
}

func setupFakeTool(t *testing.T) (*MetaEdit, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake bwfmetaedit is a shell script")
	}

	dir := t.TempDir()
	bin := filepath.Join(dir, "bwfmetaedit")
	require.NoError(t, os.WriteFile(bin, []byte(fakeTool), 0755))

	logPath := filepath.Join(dir, "writes.log")
	t.Setenv("FAKE_BWF_LOG", logPath)

	tool, err := NewMetaEdit(bin, 2*time.Second, testLogger())
	require.NoError(t, err)
	return tool, logPath
}

func TestMetaEdit_ReadCore(t *testing.T) {
	tool, _ := setupFakeTool(t)
	ctx := context.Background()

	core, err := tool.ReadCore(ctx, "/media/take1.wav")
	require.NoError(t, err)
	assert.True(t, core.HasTimeReference)
	assert.Equal(t, int64(96000), core.TimeReference)
	assert.Equal(t, "take 1, mic 2", core.Fields["Description"])
	assert.Equal(t, "/media/take1.wav", core.Fields["FileName"])

	core, err = tool.ReadCore(ctx, "/media/empty.wav")
	require.NoError(t, err)
	assert.False(t, core.HasTimeReference)
}

func TestMetaEdit_ReadCoreFailure(t *testing.T) {
	tool, _ := setupFakeTool(t)

	_, err := tool.ReadCore(context.Background(), "/media/broken.wav")
	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Contains(t, toolErr.Stderr, "cannot open")
	assert.Equal(t, []string{"--out-core", "/media/broken.wav"}, toolErr.Args)
}

func TestMetaEdit_Timeout(t *testing.T) {
	tool, _ := setupFakeTool(t)
	tool.timeout = 100 * time.Millisecond

	_, err := tool.ReadCore(context.Background(), "/media/slow.wav")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMetaEdit_ReadTech(t *testing.T) {
	tool, _ := setupFakeTool(t)

	tech, err := tool.ReadTech(context.Background(), "/media/take1.wav")
	require.NoError(t, err)
	assert.Equal(t, int64(96000), tech.SampleRate)
	assert.Equal(t, 2, tech.Channels)
}

func TestMetaEdit_WriteTimeReference(t *testing.T) {
	tool, logPath := setupFakeTool(t)
	ctx := context.Background()

	require.NoError(t, tool.WriteTimeReference(ctx, "/media/take1.wav", 388000))
	assert.Error(t, tool.WriteTimeReference(ctx, "/media/take1.wav", -1))

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, "--Timereference=388000 /media/take1.wav", strings.TrimSpace(string(data)))
}

func TestMetaEdit_Version(t *testing.T) {
	tool, _ := setupFakeTool(t)

	version, err := tool.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "BWF MetaEdit 23.04", version)
}

func TestNewMetaEdit_NotFound(t *testing.T) {
	_, err := NewMetaEdit(filepath.Join(t.TempDir(), "missing"), time.Second, testLogger())
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestParseCore(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		has     bool
		wantErr bool
	}{
		{"value", "FileName,TimeReference\na.wav,172800000\n", 172800000, true, false},
		{"empty", "FileName,TimeReference\na.wav,\n", 0, false, false},
		{"short row", "FileName,Description,TimeReference\na.wav\n", 0, false, false},
		{"bom header", "\ufeffTimeReference,FileName\n48000,a.wav\n", 48000, true, false},
		{"missing column", "FileName\na.wav\n", 0, false, true},
		{"not a number", "TimeReference\nsoon\n", 0, false, true},
		{"negative", "TimeReference\n-5\n", 0, false, true},
		{"header only", "TimeReference\n", 0, false, true},
		{"nothing", "", 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, err := parseCore(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.has, core.HasTimeReference)
			assert.Equal(t, tt.want, core.TimeReference)
		})
	}
}

func TestParseTech(t *testing.T) {
	tech, err := parseTech(strings.NewReader("FileName,SampleRate\na.wav,44100\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(44100), tech.SampleRate)

	tech, err = parseTech(strings.NewReader("FileName,SampleRate\na.wav,\n"))
	require.NoError(t, err)
	assert.Zero(t, tech.SampleRate)

	_, err = parseTech(strings.NewReader("FileName,SampleRate\na.wav,fast\n"))
	assert.Error(t, err)
}
