package db

import (
	"fmt"
	"math/big"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var tUint64 = reflect.TypeOf(uint64(0))

// registry encodes uint64 as Decimal128. The default codec stores unsigned
// integers as int64 and rejects anything above math.MaxInt64, which is a
// valid amount. Decimal128 keeps numeric ordering for sorts and range queries.
var registry = newRegistry()

func newRegistry() *bsoncodec.Registry {
	reg := bson.NewRegistry()
	reg.RegisterTypeEncoder(tUint64, bsoncodec.ValueEncoderFunc(encodeUint64))
	reg.RegisterTypeDecoder(tUint64, bsoncodec.ValueDecoderFunc(decodeUint64))
	return reg
}

func encodeUint64(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	if !val.IsValid() || val.Type() != tUint64 {
		return bsoncodec.ValueEncoderError{Name: "Uint64EncodeValue", Types: []reflect.Type{tUint64}, Received: val}
	}

	d, ok := primitive.ParseDecimal128FromBigInt(new(big.Int).SetUint64(val.Uint()), 0)
	if !ok {
		return fmt.Errorf("cannot encode %d as decimal128", val.Uint())
	}
	return vw.WriteDecimal128(d)
}

func decodeUint64(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
	if !val.CanSet() || val.Type() != tUint64 {
		return bsoncodec.ValueDecoderError{Name: "Uint64DecodeValue", Types: []reflect.Type{tUint64}, Received: val}
	}

	var n uint64
	switch vr.Type() {
	case bsontype.Decimal128:
		d, err := vr.ReadDecimal128()
		if err != nil {
			return err
		}
		i, exp, err := d.BigInt()
		if err != nil {
			return err
		}
		if exp != 0 || i.Sign() < 0 || !i.IsUint64() {
			return fmt.Errorf("decimal128 %s is not a uint64", d.String())
		}
		n = i.Uint64()
	// documents written with the default codec
	case bsontype.Int64:
		i, err := vr.ReadInt64()
		if err != nil {
			return err
		}
		if i < 0 {
			return fmt.Errorf("negative value %d cannot be decoded into uint64", i)
		}
		n = uint64(i)
	case bsontype.Int32:
		i, err := vr.ReadInt32()
		if err != nil {
			return err
		}
		if i < 0 {
			return fmt.Errorf("negative value %d cannot be decoded into uint64", i)
		}
		n = uint64(i)
	case bsontype.Null:
		if err := vr.ReadNull(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("cannot decode %v into uint64", vr.Type())
	}

	val.SetUint(n)
	return nil
}
