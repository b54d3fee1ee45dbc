package model

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/YuminosukeSato/kernelsvm/pkg/errors"
)

// SaveModel はタグとgob本体をwに書き出す
//
// 書式: gob(string タグ) に続いて gob(モデル本体)。
// 読み出し側はタグでレジストリから型を引くため、具象型を知らなくてよい。
//
// 使用例:
//
//	pf := svr.PredictionFunction()
//	err := model.SaveModel(f, pf)
func SaveModel(w io.Writer, m Tagged) error {
	enc := gob.NewEncoder(w)
	if err := enc.Encode(m.Tag()); err != nil {
		return errors.Wrap(err, "kernelsvm: failed to encode model tag")
	}
	if err := enc.Encode(m); err != nil {
		return errors.Wrapf(err, "kernelsvm: failed to encode model %q", m.Tag())
	}
	return nil
}

// LoadModel はSaveModelで書かれたモデルを読み込む。
// タグが未登録の場合は ErrUnknownTag を返す。
func LoadModel(r io.Reader) (Tagged, error) {
	dec := gob.NewDecoder(r)
	var tag string
	if err := dec.Decode(&tag); err != nil {
		return nil, errors.Wrap(err, "kernelsvm: failed to decode model tag")
	}
	m, err := New(tag)
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(m); err != nil {
		return nil, errors.Wrapf(err, "kernelsvm: failed to decode model %q", tag)
	}
	return m, nil
}

// SaveModelFile はモデルをファイルに保存する
func SaveModelFile(filename string, m Tagged) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "kernelsvm: failed to create file")
	}
	defer file.Close()
	return SaveModel(file, m)
}

// LoadModelFile はファイルからモデルを読み込む
func LoadModelFile(filename string) (Tagged, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "kernelsvm: failed to open file")
	}
	defer file.Close()
	return LoadModel(file)
}
