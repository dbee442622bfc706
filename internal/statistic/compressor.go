package statistic

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"ircstat/internal/statistic/interfaces"
	"ircstat/internal/structures"
)

const defaultLevel = zstd.SpeedBetterCompression

type ZstdCompression struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func (z *ZstdCompression) Compress(val []byte) ([]byte, error) {
	return z.encoder.EncodeAll(val, make([]byte, 0, len(val)/2)), nil
}

func (z *ZstdCompression) Decompress(val []byte) ([]byte, error) {
	return z.decoder.DecodeAll(val, nil)
}

func (z *ZstdCompression) Close() {
	_ = z.encoder.Close()
	z.decoder.Close()
}

// EncoderLevel maps output.level (fastest, default, better, best) to a zstd
// level. An empty name picks better.
func EncoderLevel(name string) (zstd.EncoderLevel, error) {
	if name == "" {
		return defaultLevel, nil
	}
	ok, level := zstd.EncoderLevelFromString(name)
	if !ok {
		return 0, fmt.Errorf("unknown zstd level %q", name)
	}
	return level, nil
}

func NewZstdCompressor(conf *structures.Config) (interfaces.CompressorInterface, error) {
	level, err := EncoderLevel(conf.Output.Level)
	if err != nil {
		return nil, err
	}
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &ZstdCompression{encoder: encoder, decoder: decoder}, nil
}
