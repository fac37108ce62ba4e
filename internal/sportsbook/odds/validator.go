package odds

import (
	"context"
	"math"
	"strconv"

	"github.com/redis/go-redis/v9"
)

type Validator struct {
	Rdb *redis.Client
}

func NewValidator(r *redis.Client) *Validator { return &Validator{Rdb: r} }

// Espera chave "odds:market:{marketID}" => valor string com odd, ex: "1.85"
func (v *Validator) CurrentOdd(ctx context.Context, marketID string) (float64, bool, error) {
	val, err := v.Rdb.Get(ctx, "odds:market:"+marketID).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false, err
	}
	return f, true, nil
}

// Matches compara a odd que o cliente viu com a corrente, com tolerância
// pequena pra ruído de serialização
func Matches(clientOdd, currentOdd float64) bool {
	return math.Abs(clientOdd-currentOdd) < 0.0005
}
