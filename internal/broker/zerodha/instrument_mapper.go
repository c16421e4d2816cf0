package zerodha

import (
	"sync"
)

// instrumentMapper caches instrument tokens learned from quotes so the
// historical API can be called by symbol.
type instrumentMapper struct {
	symbolToToken map[string]int
	mu            sync.RWMutex
}

func newInstrumentMapper() *instrumentMapper {
	return &instrumentMapper{
		symbolToToken: make(map[string]int),
	}
}

func (im *instrumentMapper) addMapping(symbol string, token int) {
	if token == 0 {
		return
	}
	im.mu.Lock()
	defer im.mu.Unlock()

	im.symbolToToken[symbol] = token
}

func (im *instrumentMapper) getToken(symbol string) (int, bool) {
	im.mu.RLock()
	defer im.mu.RUnlock()

	token, exists := im.symbolToToken[symbol]
	return token, exists
}
