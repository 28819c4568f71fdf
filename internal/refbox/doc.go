// Package refbox defines the referee box order schema and its wire encoding.
//
// The types mirror llsf_msgs.OrderInfo / llsf_msgs.Order and the product color
// enums. Messages are encoded as protobuf (proto2, unpacked repeated enums)
// and carried in protobuf_comm v2 frames:
//
//	frame header   (8 bytes): version, cipher, reserved, reserved, payload_size (uint32 BE)
//	message header (4 bytes): component_id (uint16 BE), msg_type (uint16 BE)
//	payload        (payload_size - 4 bytes): serialized protobuf message
package refbox
