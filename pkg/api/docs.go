// Package api provides the REST read API over the indexed game data
// @title LastMonad Indexer API
// @version 1.0
// @description REST API for querying LastMonad pools, players, rounds and protocol statistics
// @contact.name API Support
// @contact.url https://github.com/lastmonad/lastmonad-indexer
// @license.name Apache 2.0
// @license.url https://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @basePath /api/v1
// @schemes http https
package api
