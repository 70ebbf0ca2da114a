// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// points and amount are decimal text, they may exceed the signed 64 bit range.
const activityTableSchema = `CREATE TABLE IF NOT EXISTS activity (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	participant BLOB(32) NOT NULL,
	asset BLOB(32),
	points TEXT NOT NULL,
	amount TEXT NOT NULL,
	time INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS activity_participant ON activity(participant);
CREATE INDEX IF NOT EXISTS activity_asset ON activity(asset);
CREATE INDEX IF NOT EXISTS activity_kind ON activity(kind);`

const insertActivity = "INSERT INTO activity(kind, participant, asset, points, amount, time) VALUES(?, ?, ?, ?, ?, ?)"

const selectActivity = "SELECT seq, kind, participant, asset, points, amount, time FROM activity"
