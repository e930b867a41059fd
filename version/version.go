package version

// These values are overridden at link time using, for example,
//
//	go build -ldflags "-X github.com/TeamNorCal/saber/version.GitHash=$(git rev-parse HEAD) -X github.com/TeamNorCal/saber/version.BuildTime=$(date -u +%FT%TZ)"
var (
	BuildTime string
	GitHash   string
)
