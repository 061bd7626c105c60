package mysql

// -----------------------------------------------------------------------------
// READ QUERIES
// The pricing engine only reads; booking/hotel/rule writes belong to the
// reservation workflow, which is a separate service.
// -----------------------------------------------------------------------------

// Bookings that still occupy rooms and overlap [from, to).
const activeBookingsSQL = `
SELECT id, hotel_id, room_type, check_in, check_out, rooms, status
FROM bookings
WHERE hotel_id = ?
  AND status IN ('PENDING', 'CONFIRMED', 'CHECKED_IN')
  AND check_in < ?
  AND check_out > ?
ORDER BY check_in, id
`

// Historical demand fallback: stays starting inside the window, any status.
const countBookingsSQL = `
SELECT COUNT(*)
FROM bookings
WHERE hotel_id = ?
  AND check_in >= ?
  AND check_in < ?
`

const getHotelSQL = `
SELECT id, name, stars, total_rooms, base_rate, yield_enabled, room_types, event_windows
FROM hotels
WHERE id = ?
`

const listYieldManagedSQL = `
SELECT id, name, stars, total_rooms, base_rate, yield_enabled, room_types, event_windows
FROM hotels
WHERE yield_enabled = 1
ORDER BY id
`

// hotel_id = 0 marks a global rule; a hotel query also picks those up.
const activeRulesSQL = `
SELECT id, hotel_id, room_type, rule_type, priority, conditions, actions,
       valid_from, valid_to, is_active
FROM pricing_rules
WHERE is_active = 1
  AND (hotel_id = ? OR hotel_id = 0)
ORDER BY priority DESC, id
`
