package database

// ScrapeCacheRepository stores raw extraction payloads keyed by source-list
// URL, so an interrupted run can be re-driven without re-hitting the network.
type ScrapeCacheRepository interface {
	GetPayload(sourceURL string) ([]byte, bool, error)
	StorePayload(sourceURL string, payload []byte) error
}
