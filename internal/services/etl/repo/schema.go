package repo

// schema is applied statement by statement; every statement is idempotent
var schema = []string{
	`CREATE TABLE IF NOT EXISTS states (
		code   text PRIMARY KEY,
		name   text NOT NULL,
		region text NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS contests (
		id                  bigint PRIMARY KEY,
		lottery             text,
		contest_number      bigint NOT NULL CHECK (contest_number > 0),
		draw_date           date,
		location            text,
		rollover            boolean,
		note                text,
		collected           numeric CHECK (collected >= 0),
		accumulated_0_5     numeric CHECK (accumulated_0_5 >= 0),
		accumulated_special numeric CHECK (accumulated_special >= 0),
		accumulated_next    numeric CHECK (accumulated_next >= 0),
		estimated_next      numeric CHECK (estimated_next >= 0),
		next_contest_number bigint CHECK (next_contest_number >= 0),
		next_draw_date      date,
		drawn_numbers       jsonb NOT NULL DEFAULT '[]'::jsonb
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_contests_lottery_number
		ON contests (coalesce(lottery, ''), contest_number)`,
	`CREATE TABLE IF NOT EXISTS prize_tiers (
		contest_id      bigint NOT NULL REFERENCES contests (id),
		ordinal         int NOT NULL CHECK (ordinal > 0),
		description     text,
		tier            bigint,
		winners         bigint CHECK (winners >= 0),
		prize_value     numeric CHECK (prize_value >= 0),
		winning_numbers jsonb NOT NULL DEFAULT '[]'::jsonb,
		PRIMARY KEY (contest_id, ordinal)
	)`,
	`CREATE TABLE IF NOT EXISTS winners (
		contest_id   bigint NOT NULL REFERENCES contests (id),
		ordinal      int NOT NULL CHECK (ordinal > 0),
		municipality text,
		state_code   text REFERENCES states (code),
		winners      bigint CHECK (winners >= 0),
		tier         bigint,
		PRIMARY KEY (contest_id, ordinal)
	)`,
	`CREATE INDEX IF NOT EXISTS ix_winners_state ON winners (state_code)`,
}

// one statement so foreign keys never see a partial truncate
const truncateSQL = `TRUNCATE winners, prize_tiers, contests, states`

const insertStatesSQL = `
	INSERT INTO states (code, name, region)
	SELECT * FROM UNNEST($1::text[], $2::text[], $3::text[])
`

const insertContestsSQL = `
	INSERT INTO contests (
		id, lottery, contest_number, draw_date, location, rollover, note,
		collected, accumulated_0_5, accumulated_special, accumulated_next, estimated_next,
		next_contest_number, next_draw_date, drawn_numbers
	)
	SELECT
		t.id, t.lottery, t.contest_number, t.draw_date, t.location, t.rollover, t.note,
		t.collected::numeric, t.acc_0_5::numeric, t.acc_special::numeric, t.acc_next::numeric, t.est_next::numeric,
		t.next_contest_number, t.next_draw_date, t.drawn::jsonb
	FROM UNNEST(
		$1::bigint[], $2::text[], $3::bigint[], $4::date[], $5::text[], $6::bool[], $7::text[],
		$8::text[], $9::text[], $10::text[], $11::text[], $12::text[],
		$13::bigint[], $14::date[], $15::text[]
	) AS t(
		id, lottery, contest_number, draw_date, location, rollover, note,
		collected, acc_0_5, acc_special, acc_next, est_next,
		next_contest_number, next_draw_date, drawn
	)
`

const insertPrizesSQL = `
	INSERT INTO prize_tiers (contest_id, ordinal, description, tier, winners, prize_value, winning_numbers)
	SELECT t.contest_id, t.ordinal, t.description, t.tier, t.winners, t.prize_value::numeric, t.numbers::jsonb
	FROM UNNEST($1::bigint[], $2::int[], $3::text[], $4::bigint[], $5::bigint[], $6::text[], $7::text[])
		AS t(contest_id, ordinal, description, tier, winners, prize_value, numbers)
`

const insertWinnersSQL = `
	INSERT INTO winners (contest_id, ordinal, municipality, state_code, winners, tier)
	SELECT * FROM UNNEST($1::bigint[], $2::int[], $3::text[], $4::text[], $5::bigint[], $6::bigint[])
`

const countsSQL = `
	SELECT 'states', count(*) FROM states
	UNION ALL SELECT 'contests', count(*) FROM contests
	UNION ALL SELECT 'prize_tiers', count(*) FROM prize_tiers
	UNION ALL SELECT 'winners', count(*) FROM winners
`
