// conf/defaults.go default values for settings
package conf

import "github.com/spf13/viper"

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "SingSpeak")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "singspeak.log")
	viper.SetDefault("main.log.rotation", "daily")
	viper.SetDefault("main.log.maxsize", 100)

	viper.SetDefault("audio.samplerate", 48000)
	viper.SetDefault("audio.channels", 2)
	viper.SetDefault("audio.export.enabled", false)
	viper.SetDefault("audio.export.path", "utterances/")

	viper.SetDefault("tts.enabled", true)
	viper.SetDefault("tts.voice", "en")
	viper.SetDefault("tts.rate", 120)
	viper.SetDefault("tts.pitch", 50)
	viper.SetDefault("tts.volume", 100)

	viper.SetDefault("vocoder.enabled", true)
	viper.SetDefault("vocoder.f0floor", 50.0)
	viper.SetDefault("vocoder.f0ceil", 800.0)
	viper.SetDefault("vocoder.frameperiod", 5.0)
	viper.SetDefault("vocoder.basefrequency", 150.0)
	viper.SetDefault("vocoder.semitonerange", 36.0)

	viper.SetDefault("mapping.path", "")

	viper.SetDefault("display.enabled", false)
	viper.SetDefault("display.host", "127.0.0.1")
	viper.SetDefault("display.port", 1337)
	viper.SetDefault("display.width", 45)
	viper.SetDefault("display.height", 35)
	viper.SetDefault("display.offsetx", 0)
	viper.SetDefault("display.offsety", 0)
	viper.SetDefault("display.layer", 1)
	viper.SetDefault("display.scale", 2)
	viper.SetDefault("display.fliphorizontal", false)
	viper.SetDefault("display.mirrorglyph", true)

	viper.SetDefault("session.queuesize", 16)

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.listen", "0.0.0.0:8090")
}
