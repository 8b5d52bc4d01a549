package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

//	@title			saferoute API
//	@version		1.0
//	@description	safety-aware route ranking: k loopless alternatives between two road network nodes, explained against the best route.

//	@license.name	GNU Affero General Public License v3.0
//	@license.url	https://www.gnu.org/licenses/gpl-3.0.en.html

// @host		localhost:5000
// @BasePath	/api
// @schemes	http
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
