package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration は設定ファイルで "5s" のように書ける時間
type Duration time.Duration

// Std はtime.Durationに変換する
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String は "5s" 形式の文字列を返す
func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalText はTOMLの文字列から読み込む
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("無効な時間です: %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText は "5s" 形式で書き出す
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalYAML はYAMLの文字列から読み込む
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}
