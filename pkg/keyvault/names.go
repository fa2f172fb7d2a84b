package keyvault

import (
	"fmt"
	"math/rand"
	"strings"
)

// vault names are limited to 24 characters of alphanumerics and hyphens
const maxVaultNameLen = 24

var adjectives = []string{
	"able", "agile", "alert", "ample", "awake", "bold", "brave", "brisk",
	"calm", "clean", "crisp", "eager", "easy", "fair", "fast", "fine",
	"firm", "fond", "free", "glad", "good", "keen", "kind", "known",
	"large", "light", "loyal", "merry", "mild", "neat", "nice", "noted",
	"prime", "proud", "quick", "rapid", "ready", "rich", "ripe", "safe",
	"sharp", "smart", "solid", "sound", "spry", "swift", "tidy", "warm",
	"wise", "witty",
}

var nouns = []string{
	"action", "anchor", "basket", "beacon", "bridge", "brook", "cabin",
	"candle", "canyon", "cedar", "comet", "coral", "crest", "dawn",
	"delta", "ember", "field", "forest", "garden", "gate", "grove",
	"harbor", "haven", "hill", "island", "lagoon", "lake", "meadow",
	"orchard", "otter", "peak", "pebble", "pine", "pond", "prairie",
	"ridge", "river", "signal", "sky", "spring", "stone", "stream",
	"summit", "trail", "valley", "willow", "wind", "wren",
}

// VaultName builds a random unique vault name beginning with "vault",
// padding short names with digits so collisions across sample runs stay
// unlikely.
func VaultName() string {
	return generateName("vault")
}

func generateName(base string) string {
	name := fmt.Sprintf("%s-%s-%s", base, adjectives[rand.Intn(len(adjectives))], nouns[rand.Intn(len(nouns))])
	if len(name) < maxVaultNameLen-2 {
		var sb strings.Builder
		sb.WriteString(name)
		sb.WriteByte('-')
		for i := 0; i < 5 && sb.Len() < maxVaultNameLen; i++ {
			fmt.Fprintf(&sb, "%d", rand.Intn(10))
		}
		name = sb.String()
	}
	if len(name) > maxVaultNameLen {
		name = name[:maxVaultNameLen]
	}
	return strings.TrimSuffix(name, "-")
}
