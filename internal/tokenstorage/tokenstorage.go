package tokenstorage

import "sync"

var (
	mu     sync.RWMutex
	tokens = make(map[string]struct{})
)

func AddToken(tokenArg string) {
	mu.Lock()
	defer mu.Unlock()
	tokens[tokenArg] = struct{}{}
}

func CheckToken(tokenArg string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := tokens[tokenArg]
	return ok
}

func RevokeToken(tokenArg string) {
	mu.Lock()
	defer mu.Unlock()
	delete(tokens, tokenArg)
}
