package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/tournament-reconciler/internal/domain/game"
	"github.com/riskibarqy/tournament-reconciler/internal/domain/social"
)

// fixture is an offline catalog layered on top of the reference venues,
// series titles and recurring templates.
type fixture struct {
	Games []game.Game   `json:"games"`
	Posts []social.Post `json:"posts"`
}

func loadFixture(path string) (fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fixture{}, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var fx fixture
	if err := sonic.Unmarshal(raw, &fx); err != nil {
		return fixture{}, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return fx, nil
}

// readInput reads a file argument, or stdin for "-".
func readInput(in io.Reader, arg string) ([]byte, error) {
	if arg == "-" {
		return io.ReadAll(in)
	}
	return os.ReadFile(arg)
}
