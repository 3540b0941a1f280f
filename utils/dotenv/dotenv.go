package dotenv

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadDotEnvs loads environment variables from a .env file in the working
// directory. A missing file is not an error so that deployments configured
// purely through the environment keep working.
func LoadDotEnvs() error {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load()
}

// LoadDotEnvsInTests walks up from the test's working directory looking for a
// .env file at the repository root. Tests run from their package directory,
// not the repository root, hence the walk. Failure to find one is ignored.
func LoadDotEnvsInTests() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for {
		candidate := filepath.Join(dir, ".env")
		if _, err := os.Stat(candidate); err == nil {
			_ = godotenv.Load(candidate)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}
