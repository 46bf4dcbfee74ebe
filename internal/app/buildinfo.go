package app

// Build metadata, overridable at link time:
//
//	go build -ldflags "-X github.com/healthtextlab/medread/internal/app.BuildVersion=1.2.3 \
//	  -X github.com/healthtextlab/medread/internal/app.BuildCommit=abc123 \
//	  -X github.com/healthtextlab/medread/internal/app.BuildDate=2025-08-25"
var (
	BuildVersion = "0.0.0-dev"
	BuildCommit  = ""
	BuildDate    = ""
)
