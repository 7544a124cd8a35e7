package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
		// Service token expected from bot clients in the Authorization header.
		AuthToken string `env:"API_AUTH_TOKEN,required"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Cardano struct {
		Network           string `env:"NETWORK" envDefault:"testnet"` // mainnet or testnet
		BlockfrostURL     string `env:"BLOCKFROST_URL" envDefault:""`
		BlockfrostProject string `env:"BLOCKFROST_ID,required"`

		// Worst-case fee assumed during coin selection, in display units.
		FeeUpperBoundAda string `env:"FEE_UBOUND" envDefault:"1"`

		// Linear fee coefficients: fee = MinFeeB + MinFeeA * size.
		MinFeeA uint64 `env:"MIN_FEE_A" envDefault:"44"`
		MinFeeB uint64 `env:"MIN_FEE_B" envDefault:"155381"`

		CustodialKeySeed   string `env:"CUSTODIAL_KEY_SEED,required"` // hex, 32 bytes
		CustodialStakeAddr string `env:"CUSTODIAL_STAKE_ADDRESS,required"`
	}

	Link struct {
		TokenTTL      time.Duration `env:"LINK_TOKEN_TTL" envDefault:"15m"`
		SweepInterval time.Duration `env:"LINK_SWEEP_INTERVAL" envDefault:"15m"`
	}
}

func Load() *Config {
	// A missing .env file is fine; production sets variables directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}
