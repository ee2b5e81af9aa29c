package replay

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/coinexchain/randsrc"
)

// RunFromEnv drives RunOneScenario the same way store/fuzz/fuzz.go's
// runTest drives its block generator: RANDFILE names the byte source
// and RANDCOUNT how many independent scenarios to draw from it. It is
// meant to be invoked from a small throwaway main, not from the
// regular test suite, since it wants a real random-byte file on disk.
func RunFromEnv() error {
	randFilename := os.Getenv("RANDFILE")
	if len(randFilename) == 0 {
		return fmt.Errorf("replay: RANDFILE not set")
	}
	roundCount, err := strconv.Atoi(os.Getenv("RANDCOUNT"))
	if err != nil {
		return fmt.Errorf("replay: RANDCOUNT: %w", err)
	}

	rs := randsrc.NewRandSrcFromFileWithSeed(randFilename, []byte{0})
	cfg := DefaultScenarioConfig()
	base, err := os.MkdirTemp("", "centifuzz-replay-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(base)

	for i := 0; i < roundCount; i++ {
		workdir := filepath.Join(base, strconv.Itoa(i))
		if err := os.MkdirAll(workdir, 0o755); err != nil {
			return err
		}
		if _, err := RunOneScenario(rs, cfg, workdir); err != nil {
			return fmt.Errorf("replay: round %d: %w", i, err)
		}
	}
	return nil
}
