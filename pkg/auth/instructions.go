package auth

import (
	"fmt"
)

// ShowLoginSetupGuide prints the full walkthrough for storing TikTok
// credentials and choosing a login method.
func ShowLoginSetupGuide() {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("  📱 TikTok Login Setup")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()
	fmt.Println("tokclean drives a real browser session, so it needs a way to")
	fmt.Println("sign in to your TikTok account.")
	fmt.Println()
	fmt.Println("1️⃣  Store your credentials:")
	fmt.Println()
	fmt.Println("    tokclean auth login")
	fmt.Println()
	fmt.Println("    You will be prompted for your username and password.")
	fmt.Println("    Credentials go to your OS keyring when available,")
	fmt.Println("    otherwise to an encrypted file in the config directory.")
	fmt.Println()
	fmt.Println("2️⃣  Pick a login method:")
	fmt.Println()
	fmt.Println("    email   - username and password are typed into the")
	fmt.Println("              TikTok login form automatically")
	fmt.Println("    google  - a Google sign-in window opens and you")
	fmt.Println("              complete it yourself in the browser")
	fmt.Println()
	fmt.Println("    tokclean auth login --method google")
	fmt.Println()
	fmt.Println("3️⃣  Or use environment variables instead:")
	fmt.Println()
	fmt.Println("    export TIKTOK_USERNAME=\"your_username\"")
	fmt.Println("    export TIKTOK_PASSWORD=\"your_password\"")
	fmt.Println("    export LOGIN_METHOD=\"email\"")
	fmt.Println()
	fmt.Println("    Environment variables always win over stored credentials.")
	fmt.Println()
	fmt.Println("⚠️  Security notes:")
	fmt.Println("   • Never commit credentials to version control")
	fmt.Println("   • Set TOKCLEAN_ENCRYPTION_KEY to control the passphrase")
	fmt.Println("     protecting the encrypted credentials file")
	fmt.Println("   • TikTok may ask for a captcha or verification code on")
	fmt.Println("     first login; solve it in the browser window when it does")
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()
}

// ShowQuickSetupGuide prints the short version for users who have done
// this before.
func ShowQuickSetupGuide() {
	fmt.Println()
	fmt.Println("Quick setup:")
	fmt.Println("  1. tokclean auth login             (prompts for credentials)")
	fmt.Println("  2. tokclean run                    (preview, dry run is the default)")
	fmt.Println("  3. tokclean run --dry-run=false    (do it for real)")
	fmt.Println()
	fmt.Println("Or export TIKTOK_USERNAME and TIKTOK_PASSWORD and skip step 1.")
	fmt.Println()
}
