package flagx

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serveFlags struct {
	Config  string        `flag:"config,c" usage:"config file" required:"true"`
	Port    int           `flag:"port" usage:"listen port" default:"8080"`
	Debug   bool          `flag:"debug"`
	Origins []string      `flag:"origins" default:"https://a.example,https://b.example"`
	Grace   time.Duration `flag:"shutdown-timeout" default:"10s"`
	ignored string
}

func TestBindAndParse(t *testing.T) {
	cmd := &cobra.Command{}
	var f serveFlags
	require.NoError(t, Bind(cmd, &f))

	require.NoError(t, cmd.ParseFlags([]string{"-c", "sg.yaml", "--debug", "--shutdown-timeout", "3s"}))
	require.NoError(t, Parse(cmd, &f))

	assert.Equal(t, "sg.yaml", f.Config)
	assert.Equal(t, 8080, f.Port)
	assert.True(t, f.Debug)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, f.Origins)
	assert.Equal(t, 3*time.Second, f.Grace)
	assert.Empty(t, f.ignored)
}

func TestBind_Required(t *testing.T) {
	cmd := &cobra.Command{}
	require.NoError(t, Bind(cmd, &serveFlags{}))

	flag := cmd.Flags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, []string{"true"}, flag.Annotations[cobra.BashCompOneRequiredFlag])
	assert.Equal(t, "c", flag.Shorthand)
}

func TestParseChanged_KeepsExistingValues(t *testing.T) {
	cmd := &cobra.Command{}
	require.NoError(t, Bind(cmd, &serveFlags{}))
	require.NoError(t, cmd.ParseFlags([]string{"--port", "9090"}))

	f := serveFlags{Config: "from-file.yaml", Port: 1, Grace: time.Minute}
	require.NoError(t, ParseChanged(cmd, &f))

	assert.Equal(t, "from-file.yaml", f.Config)
	assert.Equal(t, 9090, f.Port)
	assert.Equal(t, time.Minute, f.Grace)
}

func TestTargetMustBeStructPointer(t *testing.T) {
	cmd := &cobra.Command{}
	var s string

	assert.ErrorIs(t, Bind(cmd, serveFlags{}), errNotStructPtr)
	assert.ErrorIs(t, Parse(cmd, &s), errNotStructPtr)
}

func TestParse_UnregisteredFlag(t *testing.T) {
	cmd := &cobra.Command{}
	var f serveFlags
	assert.ErrorContains(t, Parse(cmd, &f), "not registered")
}

func TestBind_UnsupportedType(t *testing.T) {
	type bad struct {
		Ratio float32 `flag:"ratio"`
	}
	assert.ErrorContains(t, Bind(&cobra.Command{}, &bad{}), "unsupported")
}

func TestBind_BadDurationDefault(t *testing.T) {
	type bad struct {
		Wait time.Duration `flag:"wait" default:"soon"`
	}
	assert.Error(t, Bind(&cobra.Command{}, &bad{}))
}
