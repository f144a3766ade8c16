package app

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decker502/casefile/pkg/config"
	"github.com/decker502/casefile/pkg/modules"
)

func headlessConfig() config.RuntimeConfig {
	return config.RuntimeConfig{
		AppName:      "casefile-test",
		SaveBackend:  "memory",
		SaveSlot:     "test",
		ScenesDir:    "data/scenes",
		StringsFile:  "data/strings.txt",
		Headless:     true,
		TPS:          60,
		WindowWidth:  1024,
		WindowHeight: 640,
		TextSpeedMs:  0,
	}
}

func TestBootstrapHeadlessWithBundledContent(t *testing.T) {
	rt, err := Bootstrap(headlessConfig(), os.DirFS("../.."))
	require.NoError(t, err)
	defer rt.Close()

	require.NotNil(t, rt.Hub)
	assert.Nil(t, rt.Screen)
	assert.Equal(t, "office", rt.Content.StartScene)
	for _, m := range []string{modules.EvidenceModule, modules.ChatModule, modules.PasswordModule} {
		assert.True(t, rt.Engine.HasFeature(m), m)
	}

	require.NoError(t, rt.Start())
	assert.Equal(t, "office", rt.Engine.Scenes().CurrentID())

	// 桌子给出钥匙后门才能打开
	require.True(t, rt.Engine.Hotspots().Interact("desk"))
	assert.True(t, rt.Engine.HasItem("office_key"))
	assert.Equal(t, "No save file found", rt.Engine.Strings().Get("NO_SAVE_FOUND"))
}

func TestBootstrapMissingContent(t *testing.T) {
	rc := headlessConfig()
	rc.ScenesDir = "data/nowhere"
	_, err := Bootstrap(rc, os.DirFS("../.."))
	assert.Error(t, err)
}
