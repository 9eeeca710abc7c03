package env

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type AppEnv = uint8

const (
	Dev AppEnv = iota
	Prod
)

const defaultBoardSize = 8

type Env struct {
	AppEnv            AppEnv
	OauthClientId     string
	OauthClientSecret string
	BoardWidth        int
	BoardHeight       int
}

func parseSize(value string, found bool) int {
	if !found {
		return defaultBoardSize
	}
	size, err := strconv.Atoi(value)
	if err != nil {
		return defaultBoardSize
	}
	return size
}

// GetEnv reads configuration from the process environment, falling
// back to a .env file when the oauth credentials are missing. Dev
// tolerates absent credentials so the server can run with anonymous
// sessions; prod does not.
func GetEnv() (*Env, error) {
	appEnvStr, appEnvExists := os.LookupEnv("APP_ENV")
	oauthClientId, oauthClientIdExists := os.LookupEnv("OAUTH_CLIENT_ID")
	oauthClientSecret, oauthClientSecretExists := os.LookupEnv("OAUTH_CLIENT_SECRET")

	appEnv := Dev
	if appEnvExists && appEnvStr == "prod" {
		appEnv = Prod
	}

	if !oauthClientIdExists || !oauthClientSecretExists {
		err := godotenv.Load("./.env")
		if err == nil {
			oauthClientId, oauthClientIdExists = os.LookupEnv("OAUTH_CLIENT_ID")
			oauthClientSecret, oauthClientSecretExists = os.LookupEnv("OAUTH_CLIENT_SECRET")
		}

		if appEnv == Prod && (!oauthClientIdExists || !oauthClientSecretExists) {
			return nil, errors.New("oauth env variables not found in the environment or a .env file")
		}
	}

	boardWidth, widthExists := os.LookupEnv("BOARD_WIDTH")
	boardHeight, heightExists := os.LookupEnv("BOARD_HEIGHT")

	return &Env{
		AppEnv:            appEnv,
		OauthClientId:     oauthClientId,
		OauthClientSecret: oauthClientSecret,
		BoardWidth:        parseSize(boardWidth, widthExists),
		BoardHeight:       parseSize(boardHeight, heightExists),
	}, nil
}
