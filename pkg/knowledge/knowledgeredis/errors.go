package knowledgeredis

import "github.com/Abraxas-365/mosaic/pkg/errx"

var redisErrors = errx.NewRegistry("KNOWLEDGE_REDIS")

var (
	ErrGet = redisErrors.Register("GET", errx.TypeExternal, 500, "Redis index lookup failed")
	ErrSet = redisErrors.Register("SET", errx.TypeExternal, 500, "Redis index store failed")
)
