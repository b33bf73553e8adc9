package config

// Example usage of the configuration system:
//
// 1. Load configuration with all sources:
//
//     cfg, err := config.Load("", nil)
//     if err != nil {
//         log.Fatal(err)
//     }
//
// 2. Load with command line flags (only flags the user set):
//
//     flags := map[string]interface{}{
//         "batch-size": 3,
//         "dry-run":    false,
//         "headless":   true,
//     }
//     cfg, err := config.Load("", flags)
//     if err != nil {
//         log.Fatal(err)
//     }
//
// 3. Programmatic configuration:
//
//     cfg := config.DefaultConfig()
//     cfg.TikTok.Username = "myaccount"
//     cfg.RateLimit.BatchSize = 3
//     cfg.Normalize()
//     if err := cfg.Validate(); err != nil {
//         log.Fatal(err)
//     }
//
// 4. Save configuration to file:
//
//     if err := cfg.Save("tokclean.yaml"); err != nil {
//         log.Fatal(err)
//     }
//
// 5. Environment variables (core knobs keep the original script's names):
//
//     export TIKTOK_USERNAME="myaccount"
//     export LOGIN_METHOD="email"          # or google
//     export BATCH_SIZE="5"                # unfollows per run
//     export ACTION_DELAY="5"              # seconds between unfollows
//     export UNFOLLOW_DELAY="10800"        # seconds between run starts
//     export PROFILE_CHECK_DELAY="30"      # seconds between profile probes
//     export MAX_TO_REVIEW="0"             # 0 reviews everything
//     export DRY_RUN="true"
//     export HEADLESS="false"
//     export TOKCLEAN_LOG_LEVEL="debug"
//
// 6. Using configuration in your application:
//
//     // Gate a run on the persisted state
//     decision := ratelimit.ShouldRun(store.LastRun(), cfg.RateLimit.RunDelay(), time.Now())
//
//     // Pace actions with jitter
//     pacer := ratelimit.NewJitteredPacer(cfg.RateLimit.ActionDelay(), cfg.RateLimit.ProfileCheckDelay())
//
// Invalid numeric values never abort the load; the default is kept and a
// warning is recorded on cfg.Warnings for the CLI to log.
