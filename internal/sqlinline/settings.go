package sqlinline

const QSelectSetting = `--sql 5cb912ce-1cb7-4550-b5ba-739cf28f9100
select value
from settings
where name = $1;
`

const QUpsertSetting = `--sql 7fcb040c-0ea0-4810-ad6f-68b7f697fe6f
insert into settings (name, value, updated_at)
values ($1, $2, now())
on conflict (name) do update set value = excluded.value, updated_at = now();
`
